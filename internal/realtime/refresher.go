package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

// Refresher coalesces cache-dirty signals into at most one refresh per quiet
// period. Every MarkDirty resets the trailing timer, so a burst of events
// triggers a single refresh once the burst has settled.
type Refresher struct {
	mu     sync.Mutex
	timer  *time.Timer
	closed bool

	quiet   time.Duration
	refresh func(ctx context.Context)
	logg    *logger.Logger
}

// NewRefresher wires the coalescing scheduler around the given refresh
// callback.
func NewRefresher(quiet time.Duration, refresh func(ctx context.Context), logg *logger.Logger) *Refresher {
	if quiet <= 0 {
		quiet = 2 * time.Second
	}
	return &Refresher{quiet: quiet, refresh: refresh, logg: logg}
}

// MarkDirty schedules a refresh after the quiet period, cancelling any
// pending one first.
func (r *Refresher) MarkDirty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.refresh == nil {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.quiet, r.fire)
}

func (r *Refresher) fire() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.refresh(ctx)
}

// Close cancels any pending refresh and rejects further signals.
func (r *Refresher) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
