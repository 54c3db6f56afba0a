package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"hilyte/internal/domain"
)

const (
	// Direct table reads carry explicit positional structure, so they score
	// higher than free-text pattern matches.
	scheduleConfidenceMultiplier = 0.9

	// Items below this OCR confidence always need manual review.
	reviewConfidenceThreshold = 0.7
)

// Extractor applies a pattern catalog and schedule-line detection to raw OCR
// text and emits deduplicated candidate items. It never fails hard; an empty
// catalog or empty text yields an empty result.
type Extractor struct {
	catalog []PatternFamily
}

// NewExtractor creates an Extractor over the given catalog.
func NewExtractor(catalog []PatternFamily) *Extractor {
	return &Extractor{catalog: catalog}
}

// Extract runs the full extraction pipeline for one page of OCR text.
func (e *Extractor) Extract(page int, text string, ocrConfidence float64) []domain.ExtractionItem {
	lines := usableLines(text)

	var items []domain.ExtractionItem
	items = append(items, e.patternItems(page, text, ocrConfidence)...)
	items = append(items, e.scheduleItems(page, lines, ocrConfidence)...)

	return Dedupe(items)
}

// patternItems matches every catalog family against the full text.
func (e *Extractor) patternItems(page int, text string, ocrConfidence float64) []domain.ExtractionItem {
	var items []domain.ExtractionItem
	for _, family := range e.catalog {
		for _, m := range family.Pattern.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 && m[1] != "" {
				raw = m[1]
			}
			name := CleanName(raw)
			if name == "" {
				continue
			}
			items = append(items, domain.ExtractionItem{
				ID:          uuid.New(),
				RawName:     name,
				Category:    family.Category,
				SourcePage:  page,
				Confidence:  ocrConfidence * family.ConfidenceMultiplier,
				NeedsReview: ocrConfidence < reviewConfidenceThreshold || IsComplexName(raw),
			})
		}
	}
	return items
}

// scheduleItems parses explicit table-like lines. The first such line must
// carry a schedule header keyword (qty/size/type/mark); subsequent table-like
// lines are then read as data rows.
func (e *Extractor) scheduleItems(page int, lines []string, ocrConfidence float64) []domain.ExtractionItem {
	var tableLines []string
	for _, line := range lines {
		if isTableLike(line) {
			tableLines = append(tableLines, line)
		}
	}
	if len(tableLines) < 2 {
		return nil
	}
	if !scheduleHeaderKeywords.MatchString(strings.ToLower(tableLines[0])) {
		return nil
	}

	var items []domain.ExtractionItem
	for _, line := range tableLines[1:] {
		quantity, name := parseScheduleRow(line)
		if name == "" {
			continue
		}
		items = append(items, domain.ExtractionItem{
			ID:          uuid.New(),
			RawName:     name,
			Category:    domain.CategoryComponent,
			Quantity:    quantity,
			SourcePage:  page,
			Confidence:  ocrConfidence * scheduleConfidenceMultiplier,
			NeedsReview: ocrConfidence < reviewConfidenceThreshold,
		})
	}
	return items
}

// usableLines splits text into lines and drops lines of three characters or
// fewer, which are OCR noise at drawing scale.
func usableLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(line)) > 3 {
			lines = append(lines, line)
		}
	}
	return lines
}

// isTableLike reports whether a line shows explicit positional structure.
func isTableLike(line string) bool {
	if wideGap.MatchString(line) || pipeSep.MatchString(line) {
		return true
	}
	return len(strings.Fields(line)) > 4
}

// parseScheduleRow splits a table-like line into fields, pulling the first
// purely numeric field out as the quantity and joining the rest as the name.
func parseScheduleRow(line string) (quantity, name string) {
	fields := splitFields(line)
	var nameParts []string
	for _, f := range fields {
		if quantity == "" && isNumeric(f) {
			quantity = f
			continue
		}
		nameParts = append(nameParts, f)
	}
	return quantity, CleanName(strings.Join(nameParts, " "))
}

var fieldSep = regexp.MustCompile(`\s{2,}|\|`)

func splitFields(line string) []string {
	var fields []string
	for _, f := range fieldSep.Split(line, -1) {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) >= 2 {
		return fields
	}
	return strings.Fields(line)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CleanName normalizes an item name: strips characters outside the allowed
// set, collapses whitespace, and removes leading enumerators like "1. ".
func CleanName(raw string) string {
	s := enumPrefix.ReplaceAllString(raw, "")
	s = nameStrip.ReplaceAllString(s, "")
	s = wsCollapse.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// complexNameKeywords flag items whose names usually hide multiple real
// items or reference detail sheets; those always need a human pass.
var complexNameKeywords = []string{
	"assembly", "system", "detail", "typical", "see note",
	"var", "varies", "multiple", "misc",
}

// IsComplexName reports whether the raw (pre-clean) name trips the complex
// heuristic: flagged keywords or parenthetical qualifiers.
func IsComplexName(raw string) bool {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "(") {
		return true
	}
	for _, kw := range complexNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NormalizeName lowercases a name and removes all whitespace; it is the
// bucket key for deduplication and cross-referencing.
func NormalizeName(name string) string {
	return strings.ToLower(wsCollapse.ReplaceAllString(name, ""))
}

// Dedupe removes items whose normalized names collide; the first occurrence
// wins. It is idempotent: running it on its own output returns the same set.
func Dedupe(items []domain.ExtractionItem) []domain.ExtractionItem {
	seen := make(map[string]bool, len(items))
	out := make([]domain.ExtractionItem, 0, len(items))
	for _, item := range items {
		key := NormalizeName(item.RawName)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
