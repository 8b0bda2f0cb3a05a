package batchimport

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Template header and sample rows served to managers as a starting point
// for bulk uploads.
var templateHeader = []string{"name", "category", "cost_price", "selling_price", "quantity", "safety_stock", "expiry_date"}

var templateRows = [][]string{
	{"Milo 500g", "Beverages", "12.50", "15.00", "50", "10", "31/12/2025"},
	{"Peak Milk 170g", "Dairy", "8.00", "10.00", "30", "5", "15/06/2025"},
	{"Indomie Chicken", "Food", "3.50", "4.50", "100", "20", ""},
}

// WriteTemplateCSV writes the import template as CSV.
func WriteTemplateCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(templateHeader); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	for _, row := range templateRows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write template row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTemplateXLSX writes the import template as an Excel workbook.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory Template"
	f.SetSheetName("Sheet1", sheet)

	all := append([][]string{templateHeader}, templateRows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
