package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed is a Subscriber whose snapshots are pushed by the test.
type feed struct {
	mu    sync.Mutex
	chans map[string]chan []core.Transaction
	err   error
}

func newFeed() *feed {
	return &feed{chans: make(map[string]chan []core.Transaction)}
}

func (f *feed) Subscribe(ctx context.Context, ownerID string) (<-chan []core.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	in := f.channel(ownerID)
	out := make(chan []core.Transaction)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-in:
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *feed) channel(ownerID string) chan []core.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chans[ownerID]
	if !ok {
		ch = make(chan []core.Transaction)
		f.chans[ownerID] = ch
	}
	return ch
}

func (f *feed) push(ownerID string, snap []core.Transaction) {
	f.channel(ownerID) <- snap
}

func snapshotOf(amounts ...string) []core.Transaction {
	out := make([]core.Transaction, len(amounts))
	for i, a := range amounts {
		out[i] = core.Transaction{
			ID:       a,
			Amount:   core.AmountFromString(a),
			Category: core.CategoryOther,
			Date:     core.NewDate(2024, time.March, 1+i),
			OwnerID:  "u1",
		}
	}
	return out
}

var march20 = func() time.Time { return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) }

func start(t *testing.T, f *feed, opts Options) *Dashboard {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d := New("u1", f, opts)
	go d.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-d.Done()
	})
	return d
}

func TestDashboardComputesEachSnapshot(t *testing.T) {
	f := newFeed()
	d := start(t, f, Options{Now: march20, Location: time.UTC})
	ctx := context.Background()

	f.push("u1", snapshotOf("100", "-40"))
	v, err := d.View(ctx)
	require.NoError(t, err)
	assert.True(t, v.Balance.Equal(core.AmountFromString("60").Decimal))
	assert.Equal(t, engine.ModeAll, v.Mode)

	f.push("u1", snapshotOf("100", "-40", "-10"))
	v, err = d.WaitNewer(ctx, v.Version)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Total)
	assert.True(t, v.Balance.Equal(core.AmountFromString("50").Decimal))
}

func TestDashboardLatestSnapshotWins(t *testing.T) {
	f := newFeed()
	d := start(t, f, Options{Now: march20})

	const n = 50
	for i := 1; i <= n; i++ {
		amounts := make([]string, i)
		for j := range amounts {
			amounts[j] = "1"
		}
		f.push("u1", snapshotOf(amounts...))
	}

	assert.Eventually(t, func() bool {
		v, err := d.View(context.Background())
		return err == nil && v.Total == n
	}, 2*time.Second, 10*time.Millisecond)

	// Nothing older may replace it afterwards.
	time.Sleep(20 * time.Millisecond)
	v, err := d.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, v.Total)
}

func TestDashboardSetFilter(t *testing.T) {
	f := newFeed()
	d := start(t, f, Options{Now: march20, Location: time.UTC})
	ctx := context.Background()

	f.push("u1", snapshotOf("100", "-40", "-10"))
	first, err := d.View(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Filtered, 3)

	assert.ErrorIs(t, d.SetFilter("weekly"), core.ErrInvalidFilterMode)
	require.NoError(t, d.SetFilter(engine.ModeExpense))
	assert.Equal(t, engine.ModeExpense, d.Mode())

	v, err := d.WaitNewer(ctx, first.Version)
	require.NoError(t, err)
	assert.Equal(t, engine.ModeExpense, v.Mode)
	assert.Len(t, v.Filtered, 2)

	inc, err := d.ViewFor(ctx, engine.ModeIncome)
	require.NoError(t, err)
	assert.Len(t, inc.Filtered, 1)
	assert.Equal(t, engine.ModeExpense, d.Mode(), "ViewFor leaves the active filter alone")

	snap, version, err := d.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 3)
	assert.Equal(t, v.Version, version)
}

func TestDashboardSubscribeFailure(t *testing.T) {
	f := newFeed()
	f.err = errors.New("store unavailable")
	d := New("u1", f, Options{})
	err := d.Run(context.Background())
	require.Error(t, err)

	_, err = d.View(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDashboardViewHonorsContext(t *testing.T) {
	d := start(t, newFeed(), Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := d.View(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager(t *testing.T) {
	f := newFeed()
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	m := NewManager(context.Background(), f, Options{Now: clock})
	defer m.Close()

	a := m.Get("u1")
	assert.Same(t, a, m.Get("u1"))
	b := m.Get("u2")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, m.Len())

	f.push("u1", snapshotOf("5"))
	v, err := a.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v.Total)

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	m.Get("u1")
	assert.Equal(t, 1, m.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, m.Len())

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("evicted dashboard did not stop")
	}
}

func TestReplacedDashboardGetsLaterEpoch(t *testing.T) {
	f := newFeed()
	m := NewManager(context.Background(), f, Options{Now: march20})
	defer m.Close()

	a := m.Get("u1")
	assert.Equal(t, 1, m.EvictIdle(-time.Nanosecond))
	b := m.Get("u1")
	require.NotSame(t, a, b)
	assert.Greater(t, b.Epoch(), a.Epoch())
	assert.NotEqual(t, a.Epoch(), m.Get("u2").Epoch())
}
