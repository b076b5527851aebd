package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MemoryLimiter usa un token bucket por clave (x/time/rate): Max requests
// de ráfaga que se reponen a lo largo de Window. Los buckets inactivos se
// descartan después de dos ventanas.
type MemoryLimiter struct {
	Max    int
	Window time.Duration

	buckets *gocache.Cache
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:     max,
		Window:  window,
		buckets: gocache.New(2*window, window),
	}
}

func (l *MemoryLimiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	every := rate.Every(l.Window / time.Duration(max(l.Max, 1)))
	b := rate.NewLimiter(every, l.Max)
	if err := l.buckets.Add(key, b, gocache.DefaultExpiration); err != nil {
		// otro goroutine lo creó primero
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return b
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	b := l.bucket(key)
	now := time.Now()
	r := b.ReserveN(now, 1)
	limit := int64(l.Max)
	if !r.OK() {
		return Result{Limit: limit, RetryAfter: l.Window}, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return Result{Limit: limit, RetryAfter: wholeSeconds(d)}, nil
	}
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: int64(max(b.TokensAt(now), 0)),
	}, nil
}
