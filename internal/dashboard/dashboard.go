// Package dashboard keeps an owner's derived view current. It subscribes to
// the owner's snapshot feed and recomputes the view for every snapshot, each
// computation tagged with the snapshot's arrival version so that a slow,
// superseded computation can never replace a newer result.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/engine"
	"finanzas/internal/snapshot"
	"finanzas/internal/store"
)

// ErrStopped is returned by reads on a dashboard that is no longer running.
var ErrStopped = errors.New("dashboard stopped")

// epochs numbers dashboard instances process-wide.
var epochs atomic.Uint64

// Options configure every dashboard a Manager starts.
type Options struct {
	// Location decides which calendar month "now" falls in.
	Location *time.Location
	Mode     engine.Mode
	// Now is overridable for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Mode == "" {
		o.Mode = engine.ModeAll
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// state is what gets published per version: the view and the snapshot it
// was derived from, so other filters can be computed on the same data.
type state struct {
	view engine.View
	snap []core.Transaction
}

// Dashboard is the adapter between one owner's snapshot feed and the engine.
type Dashboard struct {
	ownerID string
	epoch   uint64
	sub     store.Subscriber
	opts    Options
	tracker *snapshot.Tracker[state]

	mu      sync.Mutex
	mode    engine.Mode
	snap    []core.Transaction
	hasSnap bool
	runCtx  context.Context
	cancel  context.CancelFunc

	stopped chan struct{}
	runErr  error
}

// New creates an owner's dashboard. It does nothing until Run is called.
func New(ownerID string, sub store.Subscriber, opts Options) *Dashboard {
	opts = opts.withDefaults()
	return &Dashboard{
		ownerID: ownerID,
		epoch:   epochs.Add(1),
		sub:     sub,
		opts:    opts,
		tracker: snapshot.NewTracker[state](),
		mode:    opts.Mode,
		stopped: make(chan struct{}),
	}
}

// Run consumes the snapshot feed until ctx is done or the feed fails.
func (d *Dashboard) Run(ctx context.Context) error {
	err := d.run(ctx)
	d.mu.Lock()
	d.runErr = err
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	close(d.stopped)
	return err
}

func (d *Dashboard) run(ctx context.Context) error {
	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()
	feed, err := d.sub.Subscribe(ctx, d.ownerID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", d.ownerID, err)
	}
	for snap := range feed {
		d.accept(ctx, snap)
	}
	return ctx.Err()
}

// accept replaces the current snapshot and starts its computation, cancelling
// the computation of the previous one.
func (d *Dashboard) accept(ctx context.Context, snap []core.Transaction) {
	d.mu.Lock()
	d.snap, d.hasSnap = snap, true
	d.startLocked(ctx)
	d.mu.Unlock()
}

func (d *Dashboard) startLocked(ctx context.Context) {
	version := d.tracker.Arrive()
	if d.cancel != nil {
		d.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	go d.compute(cctx, version, d.snap, d.mode)
}

func (d *Dashboard) compute(ctx context.Context, version uint64, snap []core.Transaction, mode engine.Mode) {
	v, err := engine.Compute(ctx, version, snap, engine.Options{Now: d.now(), Mode: mode})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "View computation failed", "owner_id", d.ownerID, "version", version, "error", err)
		}
		return
	}
	if !d.tracker.Publish(version, state{view: v, snap: snap}) {
		slog.DebugContext(ctx, "Discarded stale view", "owner_id", d.ownerID, "version", version)
	}
}

func (d *Dashboard) now() time.Time {
	return d.opts.Now().In(d.opts.Location)
}

// SetFilter changes the active filter and recomputes the current snapshot.
func (d *Dashboard) SetFilter(mode engine.Mode) error {
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mode == mode {
		return nil
	}
	d.mode = mode
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}
	if d.hasSnap {
		d.startLocked(d.runCtx)
	}
	return nil
}

// Mode returns the active filter.
func (d *Dashboard) Mode() engine.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// View returns the newest published view, waiting for the first one.
func (d *Dashboard) View(ctx context.Context) (engine.View, error) {
	st, err := d.latest(ctx)
	return st.view, err
}

// ViewFor returns the newest view as seen through mode. The active filter is
// not changed.
func (d *Dashboard) ViewFor(ctx context.Context, mode engine.Mode) (engine.View, error) {
	st, err := d.latest(ctx)
	if err != nil {
		return engine.View{}, err
	}
	if st.view.Mode == mode {
		return st.view, nil
	}
	return engine.Compute(ctx, st.view.Version, st.snap, engine.Options{Now: d.now(), Mode: mode})
}

// Epoch identifies this dashboard instance. Versions start over in every
// instance, so a version only names a snapshot together with its epoch. A
// later instance always has a larger epoch.
func (d *Dashboard) Epoch() uint64 {
	return d.epoch
}

// Snapshot returns the transactions of the newest published view.
func (d *Dashboard) Snapshot(ctx context.Context) ([]core.Transaction, uint64, error) {
	st, err := d.latest(ctx)
	return st.snap, st.view.Version, err
}

// WaitNewer blocks until a view newer than version is published.
func (d *Dashboard) WaitNewer(ctx context.Context, version uint64) (engine.View, error) {
	for {
		changed := d.tracker.Changed()
		if st, v := d.tracker.Latest(); v > version {
			return st.view, nil
		}
		select {
		case <-changed:
		case <-d.stopped:
			return engine.View{}, d.stopErr()
		case <-ctx.Done():
			return engine.View{}, ctx.Err()
		}
	}
}

func (d *Dashboard) latest(ctx context.Context) (state, error) {
	select {
	case <-d.tracker.Ready():
	case <-d.stopped:
		select {
		case <-d.tracker.Ready():
		default:
			return state{}, d.stopErr()
		}
	case <-ctx.Done():
		return state{}, ctx.Err()
	}
	st, _ := d.tracker.Latest()
	return st, nil
}

func (d *Dashboard) stopErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runErr != nil && !errors.Is(d.runErr, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStopped, d.runErr)
	}
	return ErrStopped
}

// Done is closed when Run has returned.
func (d *Dashboard) Done() <-chan struct{} {
	return d.stopped
}
