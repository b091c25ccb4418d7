package memory

import (
	"context"
	"slices"
	"sync"

	"finanzas/internal/core"
	ports "finanzas/internal/sheets"
)

var _ ports.Mirror = (*Mirror)(nil)

// Mirror keeps the last record set written for each owner. It stands in for
// the Google mirror when no spreadsheet is configured.
type Mirror struct {
	mu     sync.Mutex
	owners map[string][]core.Transaction
	writes int
}

// New creates an empty mirror.
func New() *Mirror {
	return &Mirror{owners: make(map[string][]core.Transaction)}
}

// ReplaceOwner stores a copy of txs as ownerID's rows.
func (m *Mirror) ReplaceOwner(ctx context.Context, ownerID string, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[ownerID] = slices.Clone(txs)
	m.writes++
	return nil
}

// Owner returns the last set written for ownerID and whether one was written.
func (m *Mirror) Owner(ownerID string) ([]core.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs, ok := m.owners[ownerID]
	return slices.Clone(txs), ok
}

// Writes counts ReplaceOwner calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
