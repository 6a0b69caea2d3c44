package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultSweepInterval is how often the sweeper scans the room.
	DefaultSweepInterval = 15 * time.Second

	// DefaultStaleThreshold is how long a participant may go without a
	// heartbeat before being evicted.
	DefaultStaleThreshold = 10 * time.Second
)

// TickSource creates the channel that drives the sweeper. The returned
// function releases it.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

func tickerSource(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Sweeper periodically evicts participants that stopped sending heartbeats.
type Sweeper struct {
	room      *Service
	interval  time.Duration
	threshold time.Duration
	ticks     TickSource
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperOption is a function that configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithInterval sets the time between sweeps.
func WithInterval(d time.Duration) SweeperOption {
	return func(sw *Sweeper) {
		sw.interval = d
	}
}

// WithStaleThreshold sets the idle time after which a participant is evicted.
func WithStaleThreshold(d time.Duration) SweeperOption {
	return func(sw *Sweeper) {
		sw.threshold = d
	}
}

// WithTickSource replaces the ticker that drives Start.
func WithTickSource(ts TickSource) SweeperOption {
	return func(sw *Sweeper) {
		sw.ticks = ts
	}
}

// NewSweeper creates a sweeper for the given room. It does nothing until Start.
func NewSweeper(room *Service, opts ...SweeperOption) *Sweeper {
	sw := &Sweeper{
		room:      room,
		interval:  DefaultSweepInterval,
		threshold: DefaultStaleThreshold,
		ticks:     tickerSource,
		logger:    slog.Default().With("service", "sweeper"),
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Start launches the sweep loop. Calling Start on a running sweeper is a no-op.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sw.cancel = cancel
	sw.done = make(chan struct{})

	ticks, release := sw.ticks(sw.interval)
	go sw.run(ctx, ticks, release, sw.done)

	sw.logger.Info("Presence sweeper started",
		"interval", sw.interval,
		"stale_threshold", sw.threshold)
}

// Stop ends the sweep loop and waits for an in-flight sweep to finish.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	cancel, done := sw.cancel, sw.done
	sw.cancel, sw.done = nil, nil
	sw.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	sw.logger.Info("Presence sweeper stopped")
}

func (sw *Sweeper) run(ctx context.Context, ticks <-chan time.Time, release func(), done chan struct{}) {
	defer close(done)
	defer release()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if _, err := sw.SweepOnce(ctx); err != nil {
				sw.logger.Error("Presence sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce scans the room once and evicts stale participants, returning
// their names in join order. The participant list is snapshotted first so
// one eviction never changes how the others are evaluated; each decision is
// re-checked against the participant's current state.
func (sw *Sweeper) SweepOnce(ctx context.Context) ([]string, error) {
	snapshot, err := sw.room.Participants(ctx)
	if err != nil {
		return nil, err
	}

	var (
		evicted []string
		errs    []error
	)
	for _, p := range snapshot {
		gone, err := sw.room.evictIfStale(ctx, p.Name, sw.threshold)
		if gone {
			evicted = append(evicted, p.Name)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(evicted) > 0 {
		sw.logger.Info("Evicted idle participants",
			"count", len(evicted),
			"participants", evicted)
	}
	return evicted, errors.Join(errs...)
}
