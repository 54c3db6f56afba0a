package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hilyte/internal/config"
	"hilyte/internal/domain"
	"hilyte/internal/handler"
	"hilyte/internal/service"
	"hilyte/internal/taxonomy"
	"hilyte/mocks"
)

type extractionFixture struct {
	h       *handler.ExtractionHandler
	runs    *mocks.MockRunRepo
	storage *mocks.MockObjectStorage
	ocr     *mocks.MockOCRAdapter
}

func newExtractionFixture(t *testing.T) *extractionFixture {
	t.Helper()
	cfg := &config.Config{
		S3: config.S3Config{Bucket: "hilyte-test"},
		Geometry: config.GeometryConfig{
			RowTolerancePx:     5,
			MinColumnWidthPx:   20,
			AssignTolerancePx:  10,
			MinTokenLength:     4,
			MinTableConfidence: 0.5,
		},
		Worker: config.WorkerConfig{Concurrency: 2, PageTimeoutSecs: 30},
	}
	runs := new(mocks.MockRunRepo)
	storage := new(mocks.MockObjectStorage)
	ocr := new(mocks.MockOCRAdapter)
	svc := service.NewExtractionService(cfg, ocr, new(mocks.MockClassifier), taxonomy.DefaultTable(), runs, storage)
	return &extractionFixture{
		h:       handler.NewExtractionHandler(svc),
		runs:    runs,
		storage: storage,
		ocr:     ocr,
	}
}

func TestExtractionHandler_GetRun(t *testing.T) {
	fx := newExtractionFixture(t)
	runID := uuid.New()

	fx.runs.On("GetByID", mock.Anything, runID).Return(&domain.ExtractionRun{
		ID: runID, Status: domain.RunStatusCompleted, PageCount: 4, ItemCount: 12,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/"+runID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	fx.h.GetRun(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	fx.runs.AssertExpectations(t)
}

func TestExtractionHandler_GetRun_NotFound(t *testing.T) {
	fx := newExtractionFixture(t)
	runID := uuid.New()

	fx.runs.On("GetByID", mock.Anything, runID).Return(nil, domain.ErrRunNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/"+runID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	fx.h.GetRun(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RUN_NOT_FOUND", resp.Error.Code)
}

func TestExtractionHandler_GetRun_InvalidID(t *testing.T) {
	fx := newExtractionFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	fx.h.GetRun(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fx.runs.AssertNotCalled(t, "GetByID")
}

func TestExtractionHandler_ExtractPage_MissingImage(t *testing.T) {
	fx := newExtractionFixture(t)
	drawingID := uuid.New()

	fx.storage.On("Download", mock.Anything, "hilyte-test", "pages/missing.png").
		Return(nil, assert.AnError)

	body, _ := json.Marshal(map[string]interface{}{"page": 1, "imageKey": "pages/missing.png"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/drawings/"+drawingID.String()+"/extract", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: drawingID.String()}}

	fx.h.ExtractPage(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAGE_IMAGE_NOT_FOUND", resp.Error.Code)
}

func TestExtractionHandler_ExtractPage_InvalidBody(t *testing.T) {
	fx := newExtractionFixture(t)
	drawingID := uuid.New()

	// page is required and must be >= 1
	body, _ := json.Marshal(map[string]interface{}{"page": 0, "imageKey": "pages/p1.png"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/drawings/"+drawingID.String()+"/extract", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: drawingID.String()}}

	fx.h.ExtractPage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fx.storage.AssertNotCalled(t, "Download")
}

func TestExtractionHandler_ExtractAll_NoPages(t *testing.T) {
	fx := newExtractionFixture(t)
	drawingID := uuid.New()

	body, _ := json.Marshal(map[string]interface{}{"pageKeys": []string{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/drawings/"+drawingID.String()+"/extract-all", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: drawingID.String()}}

	fx.h.ExtractAll(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NO_PAGES", resp.Error.Code)
}
