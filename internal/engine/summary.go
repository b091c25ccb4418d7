package engine

import (
	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// Summary carries the quick-summary card figures.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"` // magnitude
	Balance  decimal.Decimal `json:"balance"`
	Count    int             `json:"count"`
}

// Summarize totals income and expense magnitudes. Malformed amounts count as zero.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero, Count: len(txs)}
	for _, t := range txs {
		switch {
		case t.IsIncome():
			s.Income = s.Income.Add(t.Amount.Decimal)
		case t.IsExpense():
			s.Expenses = s.Expenses.Add(t.Amount.Decimal.Abs())
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// Recent returns the last n transactions of the snapshot, newest first.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return []core.Transaction{}
	}
	start := max(len(txs)-n, 0)
	out := make([]core.Transaction, 0, len(txs)-start)
	for i := len(txs) - 1; i >= start; i-- {
		out = append(out, txs[i])
	}
	return out
}
