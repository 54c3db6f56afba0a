package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hilyte/internal/domain"
)

func TestRegion_Area(t *testing.T) {
	r := domain.Region{X: 10, Y: 20, Width: 4, Height: 2.5}
	assert.InDelta(t, 10.0, r.Area(), 1e-9)
	assert.Zero(t, domain.Region{}.Area())
}

func TestRegion_Union(t *testing.T) {
	a := domain.Region{X: 10, Y: 10, Width: 20, Height: 20}
	b := domain.Region{X: 25, Y: 5, Width: 10, Height: 10}

	u := a.Union(b)
	assert.Equal(t, domain.Region{X: 10, Y: 5, Width: 25, Height: 25}, u)

	// Union with a contained region is the outer region.
	inner := domain.Region{X: 12, Y: 12, Width: 2, Height: 2}
	assert.Equal(t, a, a.Union(inner))
}

func TestPageBundle_RoundTripPreservesCoordinates(t *testing.T) {
	itemID := uuid.New()
	bundle := domain.PageBundle{
		Page: 3,
		Tables: []domain.TableCandidate{
			{
				Headers:        []string{"MARK", "DESCRIPTION", "QTY"},
				Rows:           [][]string{{"AHU-1", "Air Handling Unit", "2"}},
				BoundingRegion: domain.Region{X: 120.123456, Y: 480.654321, Width: 900.5, Height: 210.25},
				Confidence:     0.83,
			},
		},
		Items: []domain.ClassifiedItem{
			{
				Item: domain.ExtractionItem{
					ID:             itemID,
					RawName:        "DUPLEX RECEPTACLE",
					Category:       domain.CategoryFixture,
					SourcePage:     3,
					BoundingRegion: domain.Region{X: 100.000001, Y: 200.000002, Width: 48.5, Height: 12.75},
					Confidence:     0.91,
				},
				DivisionCode:          "26 00 00",
				DivisionName:          "26 - Electrical",
				Color:                 "#FFB300",
				AnnotationCoordinates: domain.Region{X: 100.000001, Y: 200.000002, Width: 48.5, Height: 12.75},
				CalloutID:             "26 00 00-1",
				Confidence:            0.91,
			},
		},
		Requirements: []domain.RequirementStatement{
			{
				ID:         "req-3-1",
				Kind:       domain.KindSpecification,
				Priority:   domain.PriorityHigh,
				Content:    "All receptacles shall be mounted at 18 inches AFF",
				Metadata:   domain.RequirementMetadata{Codes: []string{"NEC 210.52"}},
				Confidence: 0.88,
				SourcePage: 3,
			},
		},
		ComplianceItems: []domain.ComplianceItem{
			{
				ID:                    "comp-1",
				Code:                  "NEC 210.52",
				Description:           "Dwelling unit receptacle outlets",
				Category:              domain.ComplianceBuildingCode,
				ComplianceLevel:       domain.ComplianceMandatory,
				RelatedRequirementIDs: []string{"req-3-1"},
			},
		},
		Clusters: []domain.TextCluster{
			{ID: "cluster-1", Theme: "electrical rough-in", Confidence: 0.7, MemberRequirementIDs: []string{"req-3-1"}},
		},
		Traceability: []domain.TraceabilityRow{
			{RequirementID: "req-3-1", ImplementationStatus: domain.ImplementationNotStarted, ChangeHistory: []string{}},
		},
		Summary: domain.AnalysisSummary{
			DocumentComplexity:  domain.ComplexityLow,
			TotalRequirements:   1,
			ComplianceItemCount: 1,
			ClusterCount:        1,
		},
	}

	data, err := json.Marshal(bundle)
	require.NoError(t, err)

	var got domain.PageBundle
	require.NoError(t, json.Unmarshal(data, &got))

	// Coordinates survive serialization without drift.
	assert.InDelta(t, 120.123456, got.Tables[0].BoundingRegion.X, 1e-6)
	assert.InDelta(t, 480.654321, got.Tables[0].BoundingRegion.Y, 1e-6)
	assert.InDelta(t, 100.000001, got.Items[0].AnnotationCoordinates.X, 1e-6)
	assert.InDelta(t, 200.000002, got.Items[0].AnnotationCoordinates.Y, 1e-6)

	assert.Equal(t, bundle, got)
}

func TestDrawingResult_RoundTrip(t *testing.T) {
	runID := uuid.New()
	occID := uuid.New()
	result := domain.DrawingResult{
		RunID: runID,
		Pages: []domain.PageBundle{{Page: 1}, {Page: 2}},
		CrossReferences: []domain.CrossReference{
			{
				CanonicalName: "AHU-1",
				Occurrences: []domain.Occurrence{
					{Page: 1, ClassifiedItemID: occID},
					{Page: 2, ClassifiedItemID: uuid.New()},
				},
			},
		},
		DivisionBreakdown: []domain.DivisionCount{
			{DivisionCode: "23 00 00", DivisionName: "23 - HVAC", UniqueItems: 1, Pages: []int{1, 2}},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var got domain.DrawingResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, result, got)
	assert.Len(t, got.CrossReferences[0].Occurrences, 2)
}

func TestPriority_IsCritical(t *testing.T) {
	assert.True(t, domain.PriorityCritical.IsCritical())
	assert.True(t, domain.PriorityHigh.IsCritical())
	assert.False(t, domain.PriorityMedium.IsCritical())
	assert.False(t, domain.PriorityLow.IsCritical())
}
