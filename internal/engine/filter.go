package engine

import (
	"fmt"
	"time"

	"finanzas/internal/core"
)

// Mode names a quick filter over a snapshot.
type Mode string

const (
	ModeAll       Mode = "all"
	ModeIncome    Mode = "income"
	ModeExpense   Mode = "expense"
	ModeThisMonth Mode = "thisMonth"
	ModeLastMonth Mode = "lastMonth"
)

// Modes lists the supported filters in display order.
func Modes() []Mode {
	return []Mode{ModeAll, ModeIncome, ModeExpense, ModeThisMonth, ModeLastMonth}
}

// ParseMode validates a filter key. Unknown keys are an error, never "all".
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidFilterMode, s)
}

// Window is a half-open range of calendar dates. A zero End is unbounded.
type Window struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d lies in [Start, End).
func (w Window) Contains(d core.Date) bool {
	if d.IsZero() || d.Before(w.Start.Time) {
		return false
	}
	return w.End.IsZero() || d.Before(w.End.Time)
}

// MonthWindow returns the date window of a month-based mode as seen from now.
// The calendar month is taken in now's location.
func MonthWindow(mode Mode, now time.Time) (Window, error) {
	thisStart := core.NewDate(now.Year(), now.Month(), 1)
	switch mode {
	case ModeThisMonth:
		return Window{Start: thisStart}, nil
	case ModeLastMonth:
		// AddDate normalizes January minus one to December of the prior year.
		prevStart := core.Date{Time: thisStart.AddDate(0, -1, 0)}
		return Window{Start: prevStart, End: thisStart}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q has no month window", core.ErrInvalidFilterMode, mode)
	}
}

// Filter returns the subsequence of txs selected by mode, in input order.
func Filter(txs []core.Transaction, mode Mode, now time.Time) ([]core.Transaction, error) {
	var keep func(core.Transaction) bool
	switch mode {
	case ModeAll:
		keep = func(core.Transaction) bool { return true }
	case ModeIncome:
		keep = core.Transaction.IsIncome
	case ModeExpense:
		keep = core.Transaction.IsExpense
	case ModeThisMonth, ModeLastMonth:
		w, err := MonthWindow(mode, now)
		if err != nil {
			return nil, err
		}
		keep = func(t core.Transaction) bool { return w.Contains(t.Date) }
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFilterMode, mode)
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}
