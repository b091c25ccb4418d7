// Package snapshot sequences recomputations over replacement snapshots.
//
// Every snapshot is tagged with a version when it arrives. A result computed
// from it is kept only if no result from a newer snapshot has been published,
// so the latest data wins regardless of which computation finishes first.
package snapshot

import (
	"sync"
	"sync/atomic"
)

// Tracker holds the newest published result of type T.
type Tracker[T any] struct {
	arrived atomic.Uint64

	mu        sync.RWMutex
	published uint64
	latest    T
	ready     chan struct{}
	changed   chan struct{}
}

// NewTracker creates a tracker with nothing published.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{
		ready:   make(chan struct{}),
		changed: make(chan struct{}),
	}
}

// Arrive tags a new snapshot. Versions start at 1 and increase monotonically.
func (t *Tracker[T]) Arrive() uint64 {
	return t.arrived.Add(1)
}

// Current returns the version of the newest snapshot that has arrived.
func (t *Tracker[T]) Current() uint64 {
	return t.arrived.Load()
}

// Stale reports whether a newer snapshot has arrived since version.
func (t *Tracker[T]) Stale(version uint64) bool {
	return version < t.arrived.Load()
}

// Publish stores v as the result for version unless a result for the same or
// a newer version is already published. It reports whether v was kept.
func (t *Tracker[T]) Publish(version uint64, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if version <= t.published {
		return false
	}
	if t.published == 0 {
		close(t.ready)
	}
	t.published = version
	t.latest = v
	close(t.changed)
	t.changed = make(chan struct{})
	return true
}

// Latest returns the newest published result and its version. The version is
// zero until something has been published.
func (t *Tracker[T]) Latest() (T, uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest, t.published
}

// Ready is closed once the first result has been published.
func (t *Tracker[T]) Ready() <-chan struct{} {
	return t.ready
}

// Changed returns a channel closed at the next successful Publish.
func (t *Tracker[T]) Changed() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changed
}
