package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hilyte/internal/domain"
)

const (
	sheetItems        = "Items"
	sheetRequirements = "Requirements"
	sheetDivisions    = "Divisions"
)

// WriteXLSX renders a drawing result as an Excel workbook with Items,
// Requirements, and Divisions sheets.
func WriteXLSX(w io.Writer, result *domain.DrawingResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeItemsSheet(f, result); err != nil {
		return err
	}
	if err := writeRequirementsSheet(f, result); err != nil {
		return err
	}
	if err := writeDivisionsSheet(f, result); err != nil {
		return err
	}

	// excelize creates "Sheet1" by default; drop it after our sheets exist.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("deleting default sheet: %w", err)
	}

	return f.Write(w)
}

func writeItemsSheet(f *excelize.File, result *domain.DrawingResult) error {
	if _, err := f.NewSheet(sheetItems); err != nil {
		return err
	}
	header := []interface{}{"Page", "Item Name", "Category", "Division Code", "Division Name", "Callout", "Confidence", "X", "Y", "Width", "Height"}
	if err := f.SetSheetRow(sheetItems, "A1", &header); err != nil {
		return err
	}
	for i, item := range result.UniqueItems {
		row := []interface{}{
			item.Item.SourcePage,
			item.Item.RawName,
			string(item.Item.Category),
			item.DivisionCode,
			item.DivisionName,
			item.CalloutID,
			item.Confidence,
			item.AnnotationCoordinates.X,
			item.AnnotationCoordinates.Y,
			item.AnnotationCoordinates.Width,
			item.AnnotationCoordinates.Height,
		}
		if err := f.SetSheetRow(sheetItems, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeRequirementsSheet(f *excelize.File, result *domain.DrawingResult) error {
	if _, err := f.NewSheet(sheetRequirements); err != nil {
		return err
	}
	header := []interface{}{"Page", "ID", "Kind", "Priority", "Discipline", "Content", "Confidence"}
	if err := f.SetSheetRow(sheetRequirements, "A1", &header); err != nil {
		return err
	}
	rowNum := 2
	for _, page := range result.Pages {
		for _, req := range page.Requirements {
			row := []interface{}{
				req.SourcePage,
				req.ID,
				string(req.Kind),
				string(req.Priority),
				req.Discipline,
				req.Content,
				req.Confidence,
			}
			if err := f.SetSheetRow(sheetRequirements, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeDivisionsSheet(f *excelize.File, result *domain.DrawingResult) error {
	if _, err := f.NewSheet(sheetDivisions); err != nil {
		return err
	}
	header := []interface{}{"Division Code", "Division Name", "Unique Items", "Pages"}
	if err := f.SetSheetRow(sheetDivisions, "A1", &header); err != nil {
		return err
	}
	for i, d := range result.DivisionBreakdown {
		row := []interface{}{d.DivisionCode, d.DivisionName, d.UniqueItems, formatPages(d.Pages)}
		if err := f.SetSheetRow(sheetDivisions, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func formatPages(pages []int) string {
	out := ""
	for i, p := range pages {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", p)
	}
	return out
}
