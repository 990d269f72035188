package middleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// LimiterStore counts requests per key inside a fixed window.
type LimiterStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimiter rejects clients that exceed limit requests per window. Store
// failures let the request through.
func RateLimiter(store LimiterStore, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := store.Allow(c.Request().Context(), c.RealIP(), limit, window)
			if err != nil {
				log.Printf("rate limiter: %v", err)
				return next(c)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

type MemoryLimiterStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	count int
	start time.Time
}

func NewMemoryLimiterStore() *MemoryLimiterStore {
	return &MemoryLimiterStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (s *MemoryLimiterStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now, window)

	b, ok := s.buckets[key]
	if !ok || now.Sub(b.start) > window {
		b = &bucket{start: now}
		s.buckets[key] = b
	}

	if b.count >= limit {
		return false, nil
	}

	b.count++
	return true, nil
}

// sweep drops buckets whose window has passed, at most once per window.
func (s *MemoryLimiterStore) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) <= window {
		return
	}
	s.lastSweep = now

	for key, b := range s.buckets {
		if now.Sub(b.start) > window {
			delete(s.buckets, key)
		}
	}
}
