package fetch

import (
	"context"
	"sync"

	"github.com/fwojciec/sdsget"
	"golang.org/x/time/rate"
)

// Rate limiter defaults: roughly one document fetch per second per
// vendor, with a small burst for page/API requests issued back to back.
const (
	defaultRequestsPerSecond = 1.0
	defaultBurst             = 3
)

// Compile-time interface verification.
var _ sdsget.VendorLimiter = (*RateLimiter)(nil)

// RateLimiter paces requests with one token bucket per vendor. Vendors
// are rate-sensitive; sequential execution provides most of the pacing
// and the limiter makes the floor explicit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewRateLimiter creates a limiter with the default per-vendor rate.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      defaultRequestsPerSecond,
		burst:    defaultBurst,
	}
}

// Wait blocks until the vendor's bucket permits a request, or the
// context is canceled.
func (l *RateLimiter) Wait(ctx context.Context, vendor string) error {
	return l.limiter(vendor).Wait(ctx)
}

func (l *RateLimiter) limiter(vendor string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[vendor]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[vendor] = lim
	}
	return lim
}
