package engine

import (
	"context"
	"time"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RecentCount is how many records the dashboard lists as recent activity.
const RecentCount = 5

// View is everything derived from one snapshot version.
type View struct {
	Version  uint64             `json:"version"`
	Mode     Mode               `json:"filter"`
	Balance  decimal.Decimal    `json:"balance"`
	Display  string             `json:"balanceDisplay"`
	Summary  Summary            `json:"summary"`
	Groups   Grouping           `json:"categories"`
	Monthly  []MonthPoint       `json:"monthly"`
	Recent   []core.Transaction `json:"recent"`
	Filtered []core.Transaction `json:"-"`
	Total    int                `json:"total"`
}

// Options control a view computation. Zero values mean ModeAll and time.Now.
type Options struct {
	Now  time.Time
	Mode Mode
}

// Compute derives a View from a snapshot. The sections are independent and
// are computed concurrently; the snapshot is only read.
func Compute(ctx context.Context, version uint64, txs []core.Transaction, opts Options) (View, error) {
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	v := View{Version: version, Mode: opts.Mode, Total: len(txs)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.Balance = Balance(txs)
		v.Display = FormatBalance(v.Balance)
		v.Summary = Summarize(txs)
		return ctx.Err()
	})
	g.Go(func() error {
		v.Groups = Group(txs)
		return ctx.Err()
	})
	g.Go(func() error {
		v.Monthly = MonthlySeries(txs)
		v.Recent = Recent(txs, RecentCount)
		return ctx.Err()
	})
	g.Go(func() error {
		filtered, err := Filter(txs, opts.Mode, opts.Now)
		v.Filtered = filtered
		return err
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return v, nil
}

// Page returns one page of the filtered set along with the page count.
func (v View) Page(size, page int) ([]core.Transaction, int, error) {
	items, err := Paginate(v.Filtered, size, page)
	if err != nil {
		return nil, 0, err
	}
	pages, err := TotalPages(len(v.Filtered), size)
	if err != nil {
		return nil, 0, err
	}
	return items, pages, nil
}
