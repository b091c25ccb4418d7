package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/store"
)

type entry struct {
	board    *Dashboard
	cancel   context.CancelFunc
	lastUsed time.Time
}

// Manager starts one Dashboard per owner on first use.
type Manager struct {
	sub  store.Subscriber
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	boards map[string]*entry
}

// NewManager creates a manager whose dashboards stop when ctx is done or on Close.
func NewManager(ctx context.Context, sub store.Subscriber, opts Options) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		sub:    sub,
		opts:   opts.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
		boards: make(map[string]*entry),
	}
}

// Get returns ownerID's dashboard, starting it if needed. A dashboard whose
// feed ended is replaced.
func (m *Manager) Get(ownerID string) *Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.boards[ownerID]; ok {
		select {
		case <-e.board.Done():
		default:
			e.lastUsed = m.opts.Now()
			return e.board
		}
	}

	ctx, cancel := context.WithCancel(m.ctx)
	board := New(ownerID, m.sub, m.opts)
	m.boards[ownerID] = &entry{board: board, cancel: cancel, lastUsed: m.opts.Now()}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := board.Run(ctx); err != nil && ctx.Err() == nil {
			slog.WarnContext(ctx, "Dashboard stopped", "owner_id", ownerID, "error", err)
		}
	}()
	return board
}

// EvictIdle stops dashboards not used within maxIdle.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.opts.Now().Add(-maxIdle)
	n := 0
	for owner, e := range m.boards {
		if e.lastUsed.Before(cutoff) {
			e.cancel()
			delete(m.boards, owner)
			n++
		}
	}
	return n
}

// Len returns the number of running dashboards.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boards)
}

// Close stops every dashboard and waits for them.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
