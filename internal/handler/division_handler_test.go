package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hilyte/internal/domain"
	"hilyte/internal/handler"
	"hilyte/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDivisionHandler_List(t *testing.T) {
	mockRepo := new(mocks.MockDivisionRepo)
	h := handler.NewDivisionHandler(mockRepo)

	mockRepo.On("ListActive", mock.Anything).Return([]domain.Division{
		{ID: 1, Code: "03 00 00", Name: "03 - Concrete", Color: "#7C2D12", SortOrder: 1, IsActive: true},
		{ID: 2, Code: "26 00 00", Name: "26 - Electrical", Color: "#FFB300", SortOrder: 2, IsActive: true},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/construction-divisions", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	divs, ok := resp.Data.([]interface{})
	assert.True(t, ok)
	assert.Len(t, divs, 2)
	mockRepo.AssertExpectations(t)
}

func TestDivisionHandler_Create(t *testing.T) {
	mockRepo := new(mocks.MockDivisionRepo)
	h := handler.NewDivisionHandler(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(div *domain.Division) bool {
		return div.Code == "48 00 00" && div.IsActive
	})).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"code":       "48 00 00",
		"name":       "48 - Electrical Power Generation",
		"color":      "#0D47A1",
		"sort_order": 39,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/construction-divisions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestDivisionHandler_Create_DuplicateCode(t *testing.T) {
	mockRepo := new(mocks.MockDivisionRepo)
	h := handler.NewDivisionHandler(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Division")).
		Return(domain.ErrDuplicateDivisionCode)

	body, _ := json.Marshal(map[string]string{"code": "26 00 00", "name": "26 - Electrical"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/construction-divisions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "DUPLICATE_DIVISION_CODE", resp.Error.Code)
}

func TestDivisionHandler_Create_MissingCode(t *testing.T) {
	mockRepo := new(mocks.MockDivisionRepo)
	h := handler.NewDivisionHandler(mockRepo)

	body, _ := json.Marshal(map[string]string{"name": "No Code"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/construction-divisions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "Create")
}
