package engine

import (
	"strings"

	"finanzas/internal/core"
)

const (
	CSVFilename    = "transacciones_finanzas_personales.csv"
	CSVContentType = "text/csv;charset=utf-8"

	// csvDateLayout renders dates the way es-ES short dates read: d/m/yyyy.
	csvDateLayout = "2/1/2006"
)

// CSVHeader is part of the exported file contract; do not reorder.
var CSVHeader = []string{"Fecha", "Descripción", "Categoría", "Monto", "Tipo"}

// CSVRows returns one row per transaction, without the header, in the column
// order of CSVHeader. Free-text fields have their commas replaced by
// semicolons since the format uses no quoting.
func CSVRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		date := ""
		if !t.Date.IsZero() {
			date = t.Date.Format(csvDateLayout)
		}
		label := core.TypeExpense.Label()
		if t.IsIncome() {
			label = core.TypeIncome.Label()
		}
		rows = append(rows, []string{
			date,
			unComma(t.Description),
			unComma(string(t.Category)),
			t.Value().StringFixed(2),
			label,
		})
	}
	return rows
}

// ToCSV renders the header and rows joined by "\n", with no trailing newline.
func ToCSV(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(CSVHeader, ","))
	for _, row := range CSVRows(txs) {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}

func unComma(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}
