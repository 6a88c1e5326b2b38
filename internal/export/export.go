// Package export renders catalog reports as XLSX workbooks.
package export

import (
	"fmt"

	"anoa.com/catalog/internal/entity"
	"github.com/xuri/excelize/v2"
)

const (
	GroupedSheet    = "Products by Category"
	GroupedFilename = "products-by-category.xlsx"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var groupedHeaders = []string{
	"Category",
	"Products",
	"Total Value",
	"Average Price",
	"Min Price",
	"Max Price",
}

// GroupedReport returns the per-category aggregate report as XLSX bytes.
func GroupedReport(groups []entity.ProductGroup) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), GroupedSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range groupedHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(GroupedSheet, cell, h); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(GroupedSheet, "A1", "F1", bold)

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	for i, g := range groups {
		row := i + 2
		values := []any{
			g.CategoryName,
			g.ProductCount,
			g.TotalValue.InexactFloat64(),
			g.AveragePrice.InexactFloat64(),
			g.MinPrice.InexactFloat64(),
			g.MaxPrice.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(GroupedSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if len(groups) > 0 {
		last := fmt.Sprintf("F%d", len(groups)+1)
		_ = f.SetCellStyle(GroupedSheet, "C2", last, money)
	}

	_ = f.SetColWidth(GroupedSheet, "A", "A", 24)
	_ = f.SetColWidth(GroupedSheet, "B", "B", 10)
	_ = f.SetColWidth(GroupedSheet, "C", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
