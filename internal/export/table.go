package export

import (
	"finanzas/internal/core"
	"finanzas/internal/engine"
)

const amountColumn = 4 // Monto, 1-based

// Table returns the export header and rows as spreadsheet cells. Text columns
// match the CSV export; the amount is numeric, rounded to cents, and 0 when
// malformed.
func Table(txs []core.Transaction) [][]any {
	out := make([][]any, 0, len(txs)+1)

	header := make([]any, len(engine.CSVHeader))
	for i, h := range engine.CSVHeader {
		header[i] = h
	}
	out = append(out, header)

	for i, row := range engine.CSVRows(txs) {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cells[amountColumn-1] = txs[i].Value().Round(2).InexactFloat64()
		out = append(out, cells)
	}
	return out
}
