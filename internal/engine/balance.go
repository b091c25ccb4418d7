package engine

import (
	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// Balance returns the sum of all amounts. Malformed amounts count as zero.
func Balance(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Value())
	}
	return total
}
