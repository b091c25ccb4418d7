package engine

import (
	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// Palette is cycled through in first-seen order of each grouping.
var Palette = [...]string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884D8"}

// Slice is one bucket of a category breakdown, ready for a chart.
type Slice struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
}

// Grouping holds expense magnitudes and income totals per category, each in
// the order its categories were first seen in the snapshot.
type Grouping struct {
	Expenses []Slice `json:"expenses"`
	Incomes  []Slice `json:"incomes"`
}

// Group partitions transactions by the sign of their amount and sums each
// partition per category. Zero and malformed amounts belong to neither.
func Group(txs []core.Transaction) Grouping {
	var expenses, incomes bucketer
	for _, t := range txs {
		switch {
		case t.IsExpense():
			expenses.add(string(t.Category), t.Amount.Decimal.Abs())
		case t.IsIncome():
			incomes.add(string(t.Category), t.Amount.Decimal)
		}
	}
	return Grouping{Expenses: expenses.slices(), Incomes: incomes.slices()}
}

// bucketer is an insertion-ordered map from label to total.
type bucketer struct {
	index map[string]int
	out   []Slice
}

func (b *bucketer) add(label string, amount decimal.Decimal) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	i, ok := b.index[label]
	if !ok {
		i = len(b.out)
		b.index[label] = i
		b.out = append(b.out, Slice{Label: label, Total: decimal.Zero, Color: Palette[i%len(Palette)]})
	}
	b.out[i].Total = b.out[i].Total.Add(amount)
}

func (b *bucketer) slices() []Slice {
	if b.out == nil {
		return []Slice{}
	}
	return b.out
}
