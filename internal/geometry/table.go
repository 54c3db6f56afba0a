package geometry

import (
	"math"
	"sort"
	"strings"

	"hilyte/internal/domain"
)

// Reconstructor clusters positioned tokens into rows and columns and emits
// zero or one table candidate per contiguous token run. Absence of a table is
// a valid outcome, never an error.
type Reconstructor struct {
	cfg Config
}

// NewReconstructor creates a Reconstructor with the given thresholds.
func NewReconstructor(cfg Config) *Reconstructor {
	return &Reconstructor{cfg: cfg}
}

// Reconstruct attempts to recover a table from one page's token run. It
// returns (nil, false) when the tokens do not form at least a 2x2 grid.
func (r *Reconstructor) Reconstruct(tokens []domain.PositionedToken) (*domain.TableCandidate, bool) {
	if len(tokens) == 0 {
		return nil, false
	}

	rows := r.groupRows(tokens)
	if len(rows) < 2 {
		return nil, false
	}

	boundaries := r.columnBoundaries(rows)
	if len(boundaries) < 2 {
		return nil, false
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = r.assignColumns(row, boundaries)
	}

	headers := cells[0]
	data := cells[1:]

	region := tokens[0].Box()
	for _, t := range tokens[1:] {
		region = region.Union(t.Box())
	}

	return &domain.TableCandidate{
		Headers:        headers,
		Rows:           data,
		BoundingRegion: region,
		Confidence:     scoreConfidence(len(boundaries), data, populated(headers)),
	}, true
}

// groupRows sorts tokens by (y, x) and groups successive tokens whose
// vertical distance stays within the row tolerance.
func (r *Reconstructor) groupRows(tokens []domain.PositionedToken) [][]domain.PositionedToken {
	sorted := make([]domain.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]domain.PositionedToken
	current := []domain.PositionedToken{sorted[0]}
	for _, t := range sorted[1:] {
		if math.Abs(t.Y-current[len(current)-1].Y) < r.cfg.RowTolerancePx {
			current = append(current, t)
		} else {
			rows = append(rows, current)
			current = []domain.PositionedToken{t}
		}
	}
	rows = append(rows, current)

	// Re-sort each row left to right; the (y, x) sort interleaves columns
	// when y values differ slightly within the tolerance.
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// columnBoundaries derives column start positions by merging x positions
// closer than the minimum column width.
func (r *Reconstructor) columnBoundaries(rows [][]domain.PositionedToken) []float64 {
	var xs []float64
	for _, row := range rows {
		for _, t := range row {
			xs = append(xs, t.X)
		}
	}
	sort.Float64s(xs)

	var boundaries []float64
	for _, x := range xs {
		if len(boundaries) == 0 || x-boundaries[len(boundaries)-1] >= r.cfg.MinColumnWidthPx {
			boundaries = append(boundaries, x)
		}
	}
	return boundaries
}

// assignColumns places each token of a row into the nearest boundary at or
// left of its x position (within the assignment tolerance) and joins
// same-column tokens with a single space.
func (r *Reconstructor) assignColumns(row []domain.PositionedToken, boundaries []float64) []string {
	cols := make([]string, len(boundaries))
	for _, t := range row {
		idx := 0
		for i, b := range boundaries {
			if b <= t.X+r.cfg.AssignTolerancePx {
				idx = i
			} else {
				break
			}
		}
		if cols[idx] == "" {
			cols[idx] = t.Text
		} else {
			cols[idx] += " " + t.Text
		}
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

// scoreConfidence implements the fixed bonus schedule: base 0.5, bonuses for
// column and data-row counts, plus up to 0.20 proportional to the fraction of
// data rows whose populated column count matches the header exactly.
func scoreConfidence(columns int, data [][]string, headerCols int) float64 {
	score := 0.5
	if columns >= 3 {
		score += 0.15
	}
	if columns >= 5 {
		score += 0.10
	}
	if len(data) >= 3 {
		score += 0.15
	}
	if len(data) >= 5 {
		score += 0.10
	}
	if len(data) > 0 {
		matched := 0
		for _, row := range data {
			if populated(row) == headerCols {
				matched++
			}
		}
		score += 0.20 * float64(matched) / float64(len(data))
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func populated(row []string) int {
	n := 0
	for _, c := range row {
		if c != "" {
			n++
		}
	}
	return n
}
