package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hilyte/internal/domain"
	"hilyte/internal/geometry"
)

func token(text string, x, y float64) domain.PositionedToken {
	return domain.PositionedToken{Text: text, X: x, Y: y, Width: 40, Height: 12, Page: 1}
}

// scheduleTokens lays out the schedule
//
//	QTY  MARK  SIZE
//	2    A1    24x48
//	1    A2    36x72
//
// on a 3-column grid.
func scheduleTokens() []domain.PositionedToken {
	return []domain.PositionedToken{
		token("QTY", 0, 0), token("MARK", 100, 0), token("SIZE", 200, 0),
		token("2", 0, 30), token("A1", 100, 30), token("24x48", 200, 30),
		token("1", 0, 60), token("A2", 100, 60), token("36x72", 200, 60),
	}
}

func TestReconstruct_ScheduleTable(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	table, ok := r.Reconstruct(scheduleTokens())

	require.True(t, ok)
	assert.Equal(t, []string{"QTY", "MARK", "SIZE"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2", "A1", "24x48"}, table.Rows[0])
	assert.Equal(t, []string{"1", "A2", "36x72"}, table.Rows[1])
	assert.GreaterOrEqual(t, table.Confidence, 0.75)
}

func TestReconstruct_FewerThanTwoRows(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	cases := map[string][]domain.PositionedToken{
		"empty":      nil,
		"single row": {token("QTY", 0, 0), token("MARK", 100, 0), token("SIZE", 200, 0)},
		"jittered single row": {
			token("QTY", 0, 0), token("MARK", 100, 2), token("SIZE", 200, 4),
		},
	}

	for name, tokens := range cases {
		t.Run(name, func(t *testing.T) {
			table, ok := r.Reconstruct(tokens)
			assert.False(t, ok)
			assert.Nil(t, table)
		})
	}
}

func TestReconstruct_SingleColumnRejected(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	// Two rows but every token starts at the same x: only one boundary.
	tokens := []domain.PositionedToken{
		token("GENERAL", 0, 0),
		token("NOTES", 0, 30),
	}

	table, ok := r.Reconstruct(tokens)

	assert.False(t, ok)
	assert.Nil(t, table)
}

func TestReconstruct_MergesCloseColumnPositions(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	// Second-row tokens start 8px off the header positions; 8px < 20px
	// minimum column width, so both land in the same two columns.
	tokens := []domain.PositionedToken{
		token("MARK", 0, 0), token("SIZE", 100, 0),
		token("A1", 8, 30), token("24x48", 108, 30),
	}

	table, ok := r.Reconstruct(tokens)

	require.True(t, ok)
	assert.Equal(t, []string{"MARK", "SIZE"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"A1", "24x48"}, table.Rows[0])
}

func TestReconstruct_JoinsSameColumnTokens(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	tokens := []domain.PositionedToken{
		token("ITEM", 0, 0), token("DESC", 200, 0),
		token("P-1", 0, 30), token("DUPLEX", 200, 30), token("RECEPTACLE", 205, 30),
	}

	table, ok := r.Reconstruct(tokens)

	require.True(t, ok)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "DUPLEX RECEPTACLE", table.Rows[0][1])
}

func TestReconstruct_BoundingRegionCoversAllTokens(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	table, ok := r.Reconstruct(scheduleTokens())

	require.True(t, ok)
	assert.Equal(t, 0.0, table.BoundingRegion.X)
	assert.Equal(t, 0.0, table.BoundingRegion.Y)
	assert.Equal(t, 240.0, table.BoundingRegion.Width)  // 200 + 40 token width
	assert.Equal(t, 72.0, table.BoundingRegion.Height)  // 60 + 12 token height
}

// Confidence must be monotonically non-decreasing in column count and row
// count, holding the other dimension fixed.
func TestReconstruct_ConfidenceMonotonicity(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	grid := func(cols, rows int) []domain.PositionedToken {
		var tokens []domain.PositionedToken
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				tokens = append(tokens, token("CELL", float64(col*100), float64(row*30)))
			}
		}
		return tokens
	}

	t.Run("columns", func(t *testing.T) {
		prev := 0.0
		for cols := 2; cols <= 6; cols++ {
			table, ok := r.Reconstruct(grid(cols, 4))
			require.True(t, ok, "cols=%d", cols)
			assert.GreaterOrEqual(t, table.Confidence, prev, "cols=%d", cols)
			prev = table.Confidence
		}
	})

	t.Run("rows", func(t *testing.T) {
		prev := 0.0
		for rows := 2; rows <= 7; rows++ {
			table, ok := r.Reconstruct(grid(3, rows))
			require.True(t, ok, "rows=%d", rows)
			assert.GreaterOrEqual(t, table.Confidence, prev, "rows=%d", rows)
			prev = table.Confidence
		}
	})
}

func TestReconstruct_ConfidenceCappedAtOne(t *testing.T) {
	r := geometry.NewReconstructor(geometry.DefaultConfig())

	var tokens []domain.PositionedToken
	for row := 0; row < 10; row++ {
		for col := 0; col < 8; col++ {
			tokens = append(tokens, token("CELL", float64(col*100), float64(row*30)))
		}
	}

	table, ok := r.Reconstruct(tokens)

	require.True(t, ok)
	assert.LessOrEqual(t, table.Confidence, 1.0)
	assert.Equal(t, 1.0, table.Confidence)
}
