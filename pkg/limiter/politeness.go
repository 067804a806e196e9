package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces out page fetches.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Politeness enforces a fixed minimum delay between consecutive fetches.
// It is a token bucket with burst 1, so the first fetch is immediate and
// every following one waits for the delay to elapse.
type Politeness struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPoliteness returns a limiter with the given inter-fetch delay.
// A delay <= 0 disables limiting.
func NewPoliteness(delay time.Duration) *Politeness {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Politeness{
		limiter: rate.NewLimiter(limit, 1),
		delay:   delay,
	}
}

// Wait blocks until the next fetch is allowed or ctx is done.
func (p *Politeness) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

func (p *Politeness) Delay() time.Duration {
	return p.delay
}
