package taxonomy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hilyte/internal/domain"
	"hilyte/internal/port"
	"hilyte/internal/taxonomy"
	"hilyte/mocks"
)

func item(name string, page int) domain.ExtractionItem {
	return domain.ExtractionItem{
		ID:             uuid.New(),
		RawName:        name,
		Category:       domain.CategoryEquipment,
		SourcePage:     page,
		BoundingRegion: domain.Region{X: 100, Y: 200, Width: 80, Height: 20},
		Confidence:     0.8,
	}
}

func TestClassifyPage_SplitsByConfidence(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Classify", mock.Anything, mock.Anything).
		Return(&port.ClassifyOutput{Text: `{
			"classifications": [
				{"itemIndex": 0, "divisionCode": "26 00 00", "divisionName": "26 - Electrical", "confidence": 0.92, "rationale": "receptacle"},
				{"itemIndex": 1, "divisionCode": "23 00 00", "divisionName": "23 - HVAC", "confidence": 0.55, "rationale": "unclear tag"}
			]
		}`}, nil)

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, low, err := engine.ClassifyPage(context.Background(), []domain.ExtractionItem{
		item("Duplex Receptacle", 3),
		item("RTU-9", 3),
	}, nil)

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "26 00 00", accepted[0].DivisionCode)
	assert.Equal(t, "#FFB300", accepted[0].Color)
	// Annotation coordinates pass through the item's bounding region.
	assert.Equal(t, accepted[0].Item.BoundingRegion, accepted[0].AnnotationCoordinates)

	require.Len(t, low, 1)
	assert.Equal(t, "RTU-9", low[0].Item.RawName)
}

func TestClassifyPage_ForwardsPageImage(t *testing.T) {
	pageImage := []byte("png-bytes")

	c := new(mocks.MockClassifier)
	c.On("Classify", mock.Anything, mock.MatchedBy(func(in port.ClassifyInput) bool {
		return string(in.ImageBytes) == string(pageImage)
	})).Return(&port.ClassifyOutput{Text: `{
			"classifications": [
				{"itemIndex": 0, "divisionCode": "26 00 00", "divisionName": "26 - Electrical", "confidence": 0.9}
			]
		}`}, nil)

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, _, err := engine.ClassifyPage(context.Background(), []domain.ExtractionItem{
		item("Duplex Receptacle", 3),
	}, pageImage)

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	c.AssertExpectations(t)
}

func TestClassifyPage_ClassifierFailureHoldsEverything(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Classify", mock.Anything, mock.Anything).Return(nil, errors.New("upstream 500"))

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, low, err := engine.ClassifyPage(context.Background(), []domain.ExtractionItem{
		item("AHU-1", 1),
		item("Steel W18x35 Beam", 1),
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, accepted)
	require.Len(t, low, 2)
	assert.Equal(t, taxonomy.FallbackColor, low[0].Color)
	assert.Zero(t, low[0].Confidence)
}

func TestClassifyPage_UnparsableResponseHoldsEverything(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Classify", mock.Anything, mock.Anything).
		Return(&port.ClassifyOutput{Text: "I cannot classify these items."}, nil)

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, low, err := engine.ClassifyPage(context.Background(), []domain.ExtractionItem{item("AHU-1", 1)}, nil)

	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Len(t, low, 1)
}

func TestClassifyPage_MissingIndexGoesToHoldingList(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Classify", mock.Anything, mock.Anything).
		Return(&port.ClassifyOutput{Text: `{
			"classifications": [
				{"itemIndex": 0, "divisionCode": "05 00 00", "confidence": 0.9}
			]
		}`}, nil)

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, low, err := engine.ClassifyPage(context.Background(), []domain.ExtractionItem{
		item("Steel W18x35 Beam", 1),
		item("Mystery Item", 1),
	}, nil)

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.Len(t, low, 1)
	assert.Equal(t, "Mystery Item", low[0].Item.RawName)
	assert.Equal(t, taxonomy.FallbackColor, low[0].Color)
}

func TestClassifyPage_EmptyInput(t *testing.T) {
	c := new(mocks.MockClassifier)

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	accepted, low, err := engine.ClassifyPage(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Empty(t, low)
	c.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestClassifyPage_CancelledContext(t *testing.T) {
	c := new(mocks.MockClassifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := taxonomy.NewEngine(c, taxonomy.DefaultTable())
	_, _, err := engine.ClassifyPage(ctx, []domain.ExtractionItem{item("AHU-1", 1)}, nil)

	require.Error(t, err)
	c.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestAnnotate_SequentialCalloutsWithinDivision(t *testing.T) {
	items := []domain.ClassifiedItem{
		{Item: item("Duplex Receptacle", 1), DivisionCode: "26 00 00", Color: "#FFB300"},
		{Item: item("Panel A", 1), DivisionCode: "26 00 00", Color: "#FFB300"},
		{Item: item("AHU-1", 1), DivisionCode: "23 00 00", Color: "#388E3C"},
		{Item: item("Light Fixture L1", 1), DivisionCode: "26 00 00", Color: "#FFB300"},
	}

	annotated := taxonomy.Annotate(items)

	assert.Equal(t, "26 00 00-1", annotated[0].CalloutID)
	assert.Equal(t, "26 00 00-2", annotated[1].CalloutID)
	assert.Equal(t, "23 00 00-1", annotated[2].CalloutID)
	assert.Equal(t, "26 00 00-3", annotated[3].CalloutID)
}

func TestAnnotate_FallbackColorWhenMissing(t *testing.T) {
	items := []domain.ClassifiedItem{
		{Item: item("Unmatched Thing", 1), DivisionCode: "", Color: ""},
	}

	annotated := taxonomy.Annotate(items)

	assert.Equal(t, taxonomy.FallbackColor, annotated[0].Color)
	assert.Equal(t, "-1", annotated[0].CalloutID)
}
