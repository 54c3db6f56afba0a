// Package geometry normalizes raw OCR output into positioned tokens and
// reconstructs tables from token positions.
package geometry

import (
	"strings"

	"hilyte/internal/domain"
	"hilyte/internal/port"
)

// Config holds the clustering thresholds used across the package. The pixel
// defaults assume 300 DPI renders; they are heuristics, not requirements, and
// should be scaled when pages are rendered at a different resolution.
type Config struct {
	RowTolerancePx    float64
	MinColumnWidthPx  float64
	AssignTolerancePx float64
	MinTokenLength    int
}

// DefaultConfig returns the thresholds tuned for 300 DPI 2400x1600 renders.
func DefaultConfig() Config {
	return Config{
		RowTolerancePx:    5.0,
		MinColumnWidthPx:  20.0,
		AssignTolerancePx: 10.0,
		MinTokenLength:    4,
	}
}

// Store normalizes raw OCR or text-layer output into positioned tokens.
type Store struct {
	cfg Config
}

// NewStore creates a Store with the given thresholds.
func NewStore(cfg Config) *Store {
	if cfg.MinTokenLength <= 0 {
		cfg.MinTokenLength = 4
	}
	return &Store{cfg: cfg}
}

// Ingest filters and normalizes raw tokens for one page. Short tokens are
// noise, zero-area boxes carry no position, and tokens the engine could not
// place are dropped rather than treated as errors.
func (s *Store) Ingest(page int, raw []port.RawToken) []domain.PositionedToken {
	tokens := make([]domain.PositionedToken, 0, len(raw))
	for _, rt := range raw {
		if !rt.Valid {
			continue
		}
		if len([]rune(rt.Text)) < s.cfg.MinTokenLength {
			continue
		}
		if rt.Width <= 0 || rt.Height <= 0 {
			continue
		}
		tokens = append(tokens, domain.PositionedToken{
			Text:   rt.Text,
			X:      rt.X,
			Y:      rt.Y,
			Width:  rt.Width,
			Height: rt.Height,
			Page:   page,
		})
	}
	return tokens
}

// Locate finds the on-page region for an item name by matching its words
// against positioned tokens. A token matching the leading word anchors the
// search; remaining words are matched left to right along the anchor's row
// (within the row tolerance) and the matched boxes are unioned. Words shorter
// than the minimum token length never have a surviving token, so they are
// skipped rather than required. When only the anchor matches, its box alone
// is returned. Names with no anchoring token report ok=false.
func (s *Store) Locate(tokens []domain.PositionedToken, name string) (domain.Region, bool) {
	words := locateWords(name, s.cfg.MinTokenLength)
	if len(words) == 0 || len(tokens) == 0 {
		return domain.Region{}, false
	}

	var anchorBox domain.Region
	haveAnchor := false

	for i := range tokens {
		if !tokenMatches(tokens[i].Text, words[0]) {
			continue
		}
		if !haveAnchor {
			anchorBox = tokens[i].Box()
			haveAnchor = true
		}

		region := tokens[i].Box()
		matched := 1
		for j := i + 1; j < len(tokens) && matched < len(words); j++ {
			if absFloat(tokens[j].Y-tokens[i].Y) > s.cfg.RowTolerancePx {
				continue
			}
			if tokens[j].X <= tokens[i].X {
				continue
			}
			if tokenMatches(tokens[j].Text, words[matched]) {
				region = region.Union(tokens[j].Box())
				matched++
			}
		}
		if matched == len(words) {
			return region, true
		}
	}

	if haveAnchor {
		return anchorBox, true
	}
	return domain.Region{}, false
}

// locateWords splits a name into normalized match words, dropping words too
// short to have survived token ingestion.
func locateWords(name string, minLen int) []string {
	var words []string
	for _, f := range strings.Fields(name) {
		w := normalizeWord(f)
		if len([]rune(w)) >= minLen {
			words = append(words, w)
		}
	}
	return words
}

// normalizeWord lowercases a word and strips everything non-alphanumeric.
func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenMatches reports whether a token's normalized text carries the word.
// Containment tolerates OCR tokens that merge punctuation or neighbors.
func tokenMatches(tokenText, word string) bool {
	return strings.Contains(normalizeWord(tokenText), word)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
