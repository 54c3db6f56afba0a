package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hilyte/internal/config"
	"hilyte/internal/domain"
	"hilyte/internal/handler"
	"hilyte/internal/service"
	"hilyte/internal/taxonomy"
	"hilyte/mocks"
)

func exportFixture(t *testing.T) (*handler.ExportHandler, *mocks.MockRunRepo, *mocks.MockObjectStorage) {
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
	mockRuns := new(mocks.MockRunRepo)
	mockStorage := new(mocks.MockObjectStorage)
	svc := service.NewExtractionService(
		cfg,
		new(mocks.MockOCRAdapter),
		new(mocks.MockClassifier),
		taxonomy.DefaultTable(),
		mockRuns,
		mockStorage,
	)
	return handler.NewExportHandler(svc), mockRuns, mockStorage
}

func exportRequest(id uuid.UUID, format string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	url := "/api/v1/runs/" + id.String() + "/export"
	if format != "" {
		url += "?format=" + format
	}
	c.Request, _ = http.NewRequest(http.MethodGet, url, nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	return w, c
}

func TestExportHandler_CSV(t *testing.T) {
	h, mockRuns, _ := exportFixture(t)
	runID := uuid.New()

	mockRuns.On("GetByID", mock.Anything, runID).Return(&domain.ExtractionRun{
		ID: runID, Status: domain.RunStatusCompleted,
	}, nil)
	mockRuns.On("ListItems", mock.Anything, runID).Return([]domain.StoredItem{
		{
			ID:           uuid.New(),
			RunID:        runID,
			Page:         3,
			Name:         "DUPLEX RECEPTACLE",
			Category:     domain.CategoryFixture,
			DivisionCode: "26 00 00",
			CalloutID:    "26 00 00-1",
			Confidence:   0.92,
			RegionX:      120.5,
			RegionY:      340,
			RegionW:      48,
			RegionH:      12,
			CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}, nil)

	w, c := exportRequest(runID, "csv")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "CSV must start with UTF-8 BOM")
	assert.Contains(t, string(body), "Page,Item Name,Category,Division Code")
	assert.Contains(t, string(body), "DUPLEX RECEPTACLE")
	assert.Contains(t, string(body), "26 00 00-1")
	mockRuns.AssertExpectations(t)
}

func TestExportHandler_CSV_RunNotFound(t *testing.T) {
	h, mockRuns, _ := exportFixture(t)
	runID := uuid.New()

	mockRuns.On("GetByID", mock.Anything, runID).Return(nil, domain.ErrRunNotFound)

	w, c := exportRequest(runID, "csv")
	h.Export(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRuns.AssertNotCalled(t, "ListItems")
}

func TestExportHandler_XLSX(t *testing.T) {
	h, mockRuns, mockStorage := exportFixture(t)
	runID := uuid.New()

	mockRuns.On("GetByID", mock.Anything, runID).Return(&domain.ExtractionRun{
		ID: runID, Status: domain.RunStatusCompleted,
	}, nil)

	result := domain.DrawingResult{
		RunID: runID,
		UniqueItems: []domain.ClassifiedItem{
			{
				Item:         domain.ExtractionItem{ID: uuid.New(), RawName: "AHU-1", Category: domain.CategoryEquipment, SourcePage: 1},
				DivisionCode: "23 00 00",
				DivisionName: "23 - HVAC",
				CalloutID:    "23 00 00-1",
				Confidence:   0.9,
			},
		},
		DivisionBreakdown: []domain.DivisionCount{
			{DivisionCode: "23 00 00", DivisionName: "23 - HVAC", UniqueItems: 1, Pages: []int{1}},
		},
	}
	bundle, err := json.Marshal(result)
	require.NoError(t, err)
	mockStorage.On("Download", mock.Anything, "hilyte-test", "runs/"+runID.String()+"/result.json").
		Return(bundle, nil)

	w, c := exportRequest(runID, "xlsx")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	name, err := f.GetCellValue("Items", "B2")
	require.NoError(t, err)
	assert.Equal(t, "AHU-1", name)
	mockStorage.AssertExpectations(t)
}

func TestExportHandler_XLSX_RunNotFinished(t *testing.T) {
	h, mockRuns, mockStorage := exportFixture(t)
	runID := uuid.New()

	mockRuns.On("GetByID", mock.Anything, runID).Return(&domain.ExtractionRun{
		ID: runID, Status: domain.RunStatusRunning,
	}, nil)

	w, c := exportRequest(runID, "xlsx")
	h.Export(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RUN_NOT_FINISHED", resp.Error.Code)
	mockStorage.AssertNotCalled(t, "Download")
}

func TestExportHandler_UnsupportedFormat(t *testing.T) {
	h, mockRuns, _ := exportFixture(t)

	w, c := exportRequest(uuid.New(), "pdf")
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_EXPORT", resp.Error.Code)
	mockRuns.AssertNotCalled(t, "GetByID")
}

func TestExportHandler_InvalidID(t *testing.T) {
	h, _, _ := exportFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/not-a-uuid/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
