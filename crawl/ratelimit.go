package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/adscan"
	"golang.org/x/time/rate"
)

var _ adscan.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces page loads per publisher. Each publisher host gets
// its own token bucket; "www." and letter case are ignored when picking
// the bucket, so www.pub.com and PUB.com share one.
type DomainLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst lets n loads of one publisher start back to back before
// spacing applies. Values below 1 are ignored.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n >= 1 {
			d.burst = n
		}
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps loads per second
// per publisher. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a load from domain is allowed. A disabled limiter
// only reports whether ctx is already done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.limit <= 0 {
		return ctx.Err()
	}
	return d.bucket(publisher(domain)).Wait(ctx)
}

func (d *DomainLimiter) bucket(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[key]
	if !ok {
		b = rate.NewLimiter(d.limit, d.burst)
		d.buckets[key] = b
	}
	return b
}

func publisher(domain string) string {
	host := strings.ToLower(strings.TrimSuffix(domain, "."))
	return strings.TrimPrefix(host, "www.")
}
