package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Loader is anything that can reload its dataset.
type Loader interface {
	Load(ctx context.Context) error
}

// Refresher reloads the dataset on a fixed interval so edits made at the
// source show up without a restart.
type Refresher struct {
	loader   Loader
	interval time.Duration
	clock    clockwork.Clock

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefresher creates a refresher. A nil clock uses the wall clock.
func NewRefresher(loader Loader, interval time.Duration, clock clockwork.Clock) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{
		loader:   loader,
		interval: interval,
		clock:    clock,
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", r.interval)
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	go r.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Dataset refresher started", "component", "dashboard", "interval", r.interval)
	return nil
}

// Stop signals the loop and waits for it, or for ctx to expire.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.running = false
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Dataset refresher stopped", "component", "dashboard")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Dataset refresher stop timed out", "component", "dashboard")
		return ctx.Err()
	}
}

// IsRunning returns whether the refresher is currently running
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			// Load logs its own failures; the previous dataset stays current.
			_ = r.loader.Load(ctx)
		}
	}
}
