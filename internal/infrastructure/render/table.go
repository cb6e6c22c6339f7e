package render

import (
	"fmt"
	"io"

	"github.com/comparewise/backend/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
)

// ComparisonHeader is the column header of every comparison rendering
var ComparisonHeader = []string{"Detail Name", "Product 1", "Product 2"}

// Table writes rows as a plain-text table. Rows are written in the order given.
func Table(w io.Writer, rows []domain.ComparisonRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(ComparisonHeader)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, r := range rows {
		table.Append([]string{r.DetailName, r.Product1, r.Product2})
	}
	table.Render()
}

// Workbook writes rows as an xlsx spreadsheet with one sheet named after the products
func Workbook(w io.Writer, id1, id2 domain.ProductID, rows []domain.ComparisonRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Comparison"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{ComparisonHeader[0], fmt.Sprintf("%s (%s)", ComparisonHeader[1], id1), fmt.Sprintf("%s (%s)", ComparisonHeader[2], id2)}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.DetailName, r.Product1, r.Product2}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
