package facebook

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPageInterval is the minimum spacing between page loads.
const DefaultPageInterval = 5 * time.Second

// pacer spaces page loads with a token bucket of size one, so a burst of
// searches and detail pages is spread out the way a person browsing would.
type pacer struct {
	limiter *rate.Limiter
	loads   atomic.Int64
}

func newPacer(interval time.Duration) *pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next page load is allowed or ctx is canceled.
func (p *pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("page rate limiter wait: %w", err)
	}
	p.loads.Add(1)
	return nil
}

// Loads returns the number of page loads allowed so far.
func (p *pacer) Loads() int64 {
	return p.loads.Load()
}
