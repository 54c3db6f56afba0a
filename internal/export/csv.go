// Package export renders extraction run results as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hilyte/internal/domain"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV output for Excel
// compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for extracted items.
var columns = []string{
	"Page",
	"Item Name",
	"Category",
	"Division Code",
	"Callout",
	"Confidence",
	"Needs Review",
	"X",
	"Y",
	"Width",
	"Height",
	"Created At",
}

// CSVWriter wraps csv.Writer for exporting run items.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteItems converts a run's stored items to CSV rows and writes them.
func (w *CSVWriter) WriteItems(items []domain.StoredItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func itemToRow(item *domain.StoredItem) []string {
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(item.Page)
	row[1] = item.Name
	row[2] = string(item.Category)
	row[3] = item.DivisionCode
	row[4] = item.CalloutID
	row[5] = formatConfidence(item.Confidence)
	row[6] = formatBool(item.NeedsReview)
	row[7] = formatCoord(item.RegionX)
	row[8] = formatCoord(item.RegionY)
	row[9] = formatCoord(item.RegionW)
	row[10] = formatCoord(item.RegionH)
	row[11] = item.CreatedAt.Format(time.RFC3339)
	return row
}

func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a run identifier for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header: {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
