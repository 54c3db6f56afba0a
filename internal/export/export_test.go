package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hilyte/internal/domain"
	"hilyte/internal/export"
)

func sampleStoredItems() []domain.StoredItem {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []domain.StoredItem{
		{
			ID: uuid.New(), RunID: uuid.New(), Page: 3,
			Name: "Duplex Receptacle", Category: domain.CategoryFixture,
			DivisionCode: "26 00 00", CalloutID: "26 00 00-1",
			Confidence: 0.92, NeedsReview: false,
			RegionX: 120.5, RegionY: 340.25, RegionW: 80, RegionH: 20,
			CreatedAt: created,
		},
		{
			ID: uuid.New(), RunID: uuid.New(), Page: 7,
			Name: "Mystery Item", Category: domain.CategoryComponent,
			DivisionCode: "", CalloutID: "",
			Confidence: 0, NeedsReview: true,
			CreatedAt: created,
		},
	}
}

func TestCSVWriter_WritesHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewCSVWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteItems(sampleStoredItems()))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Page", records[0][0])
	assert.Equal(t, "3", records[1][0])
	assert.Equal(t, "Duplex Receptacle", records[1][1])
	assert.Equal(t, "26 00 00", records[1][3])
	assert.Equal(t, "0.92", records[1][5])
	assert.Equal(t, "No", records[1][6])
	assert.Equal(t, "120.5", records[1][7])
	assert.Equal(t, "Yes", records[2][6])
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Run 42 / Final (v2)": "Run_42_Final_v2",
		"___already__clean":   "already_clean",
		"plain":               "plain",
	}
	for in, want := range cases {
		assert.Equal(t, want, export.SanitizeFilename(in))
	}
}

func TestBuildFilename_Extension(t *testing.T) {
	name := export.BuildFilename("Run 42", "csv")
	assert.Contains(t, name, "Run_42_")
	assert.Contains(t, name, ".csv")
}

func TestWriteXLSX_Workbook(t *testing.T) {
	runID := uuid.New()
	result := &domain.DrawingResult{
		RunID: runID,
		Pages: []domain.PageBundle{
			{
				Page: 1,
				Requirements: []domain.RequirementStatement{
					{ID: "r1", Kind: domain.KindCompliance, Priority: domain.PriorityCritical,
						Content: "All work per IBC 2021.", Confidence: 0.9, SourcePage: 1},
				},
			},
		},
		UniqueItems: []domain.ClassifiedItem{
			{
				Item: domain.ExtractionItem{
					RawName: "Duplex Receptacle", Category: domain.CategoryFixture, SourcePage: 1,
					BoundingRegion: domain.Region{X: 10, Y: 20, Width: 30, Height: 40},
				},
				DivisionCode: "26 00 00", DivisionName: "26 - Electrical",
				CalloutID: "26 00 00-1", Confidence: 0.9,
				AnnotationCoordinates: domain.Region{X: 10, Y: 20, Width: 30, Height: 40},
			},
		},
		DivisionBreakdown: []domain.DivisionCount{
			{DivisionCode: "26 00 00", DivisionName: "26 - Electrical", UniqueItems: 1, Pages: []int{1, 3}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Items", "Requirements", "Divisions"}, f.GetSheetList())

	name, err := f.GetCellValue("Items", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Duplex Receptacle", name)

	content, err := f.GetCellValue("Requirements", "F2")
	require.NoError(t, err)
	assert.Equal(t, "All work per IBC 2021.", content)

	pages, err := f.GetCellValue("Divisions", "D2")
	require.NoError(t, err)
	assert.Equal(t, "1, 3", pages)
}
