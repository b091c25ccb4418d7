package engine

import (
	"fmt"
	"slices"
	"time"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// MonthPoint is the income and expense total of one calendar month.
type MonthPoint struct {
	Label   string          `json:"label"` // M/YYYY
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"` // magnitude
}

// MonthlySeries sums income and expense magnitude per calendar month of the
// transaction date, oldest month first. Undated records are skipped.
func MonthlySeries(txs []core.Transaction) []MonthPoint {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*MonthPoint)
	for _, t := range txs {
		if t.Date.IsZero() || !(t.IsIncome() || t.IsExpense()) {
			continue
		}
		k := key{t.Date.Year(), t.Date.Month()}
		p, ok := byMonth[k]
		if !ok {
			p = &MonthPoint{
				Label:   fmt.Sprintf("%d/%d", int(k.month), k.year),
				Year:    k.year,
				Month:   k.month,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			byMonth[k] = p
		}
		if t.IsIncome() {
			p.Income = p.Income.Add(t.Amount.Decimal)
		} else {
			p.Expense = p.Expense.Add(t.Amount.Decimal.Abs())
		}
	}

	out := make([]MonthPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b MonthPoint) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return int(a.Month) - int(b.Month)
	})
	return out
}
