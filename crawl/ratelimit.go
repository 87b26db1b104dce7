package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/lawofone"
	"golang.org/x/time/rate"
)

var _ lawofone.Throttle = (*Throttle)(nil)

// DefaultIntervals are the pauses between consecutive requests of each
// build loop.
var DefaultIntervals = map[string]time.Duration{
	lawofone.LoopCategories: 500 * time.Millisecond,
	lawofone.LoopSessions:   time.Second,
	lawofone.LoopSections:   time.Second,
	lawofone.LoopLinks:      500 * time.Millisecond,
}

// Throttle paces build requests using one token bucket per loop.
// Each loop gets a burst of 1, so its first request goes immediately and
// the following ones are spaced by the loop's interval. Loops without a
// configured interval, or with a zero interval, are not limited.
type Throttle struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	intervals map[string]time.Duration
}

// NewThrottle creates a Throttle with the given per-loop intervals.
// A nil map selects DefaultIntervals.
func NewThrottle(intervals map[string]time.Duration) *Throttle {
	if intervals == nil {
		intervals = DefaultIntervals
	}
	return &Throttle{
		limiters:  make(map[string]*rate.Limiter),
		intervals: intervals,
	}
}

// Wait blocks until the loop may issue its next request.
// Returns an error if the context is canceled before the wait completes.
func (t *Throttle) Wait(ctx context.Context, loop string) error {
	t.mu.Lock()
	limiter, ok := t.limiters[loop]
	if !ok {
		limit := rate.Inf
		if d := t.intervals[loop]; d > 0 {
			limit = rate.Every(d)
		}
		limiter = rate.NewLimiter(limit, 1)
		t.limiters[loop] = limiter
	}
	t.mu.Unlock()

	return limiter.Wait(ctx)
}
