// Package export renders a transaction set as a spreadsheet with the same
// columns and values as the CSV export.
package export

import (
	"bytes"
	"fmt"
	"io"

	"finanzas/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXFilename    = "transacciones_finanzas_personales.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName       = "Transacciones"

	numFmtFixed2 = 2 // built-in "0.00"
)

var columnWidths = map[string]float64{"A": 12, "B": 40, "C": 16, "D": 12, "E": 10}

// WriteXLSX writes txs as a workbook with one sheet. Amounts are numeric
// cells; malformed amounts are written as 0.
func WriteXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtFixed2})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for i, row := range Table(txs) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(txs) > 0 {
		first, _ := excelize.CoordinatesToCellName(amountColumn, 2)
		last, _ := excelize.CoordinatesToCellName(amountColumn, len(txs)+1)
		if err := f.SetCellStyle(SheetName, first, last, amountStyle); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set width %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// XLSX returns the workbook bytes.
func XLSX(txs []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, txs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
