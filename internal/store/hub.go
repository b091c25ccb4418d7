package store

import (
	"context"
	"sync"

	"finanzas/internal/core"
)

// Hub fans snapshots out to per-owner subscribers. Each subscriber has a
// one-slot mailbox: a newer snapshot replaces one not yet received.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan []core.Transaction]struct{}
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan []core.Transaction]struct{})}
}

// Subscribe registers a mailbox for ownerID primed with initial. It is
// removed and closed when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, ownerID string, initial []core.Transaction) <-chan []core.Transaction {
	ch := make(chan []core.Transaction, 1)
	ch <- initial

	h.mu.Lock()
	set, ok := h.subs[ownerID]
	if !ok {
		set = make(map[chan []core.Transaction]struct{})
		h.subs[ownerID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, ownerID)
		}
		close(ch)
	}()
	return ch
}

// Publish delivers snapshot to every subscriber of ownerID without blocking.
func (h *Hub) Publish(ownerID string, snapshot []core.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ownerID] {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

// Subscribers returns the number of live subscriptions for ownerID.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}
