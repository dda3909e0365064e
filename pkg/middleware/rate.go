// Package middleware provides the HTTP middleware chain for the API.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucket tracks a fixed-window request count for one IP. Used when Redis is
// not configured, so a single instance still gets protection.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

// RateLimiter limits each client IP to max requests per window. When a Redis
// client is provided, counters live in Redis so the limit holds across
// instances; otherwise an in-memory bucket per IP is used.
type RateLimiter struct {
	rdb    *redis.Client // nil → memory mode
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket

	done      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter builds a limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		rdb:     rdb,
		max:     max,
		window:  window,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Close stops the bucket eviction goroutine. Safe to call more than once.
// The limiter keeps working after Close; only eviction stops.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// Middleware returns the http middleware enforcing the limit.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
				ip = fwd
			}

			if !rl.allow(r.Context(), ip) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"status":429,"message":"Too Many Requests"}`)) //nolint:errcheck
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, ip string) bool {
	if rl.rdb != nil {
		if ok, err := rl.allowRedis(ctx, ip); err == nil {
			return ok
		}
		// Redis unavailable: fall through to memory rather than reject.
	}
	return rl.bucketFor(ip).allow(rl.max, rl.window)
}

// allowRedis counts the window with INCR + EXPIRE on first hit.
func (rl *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, error) {
	key := "ratelimit:" + ip
	n, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(rl.max), nil
}

func (rl *RateLimiter) bucketFor(ip string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[ip]; ok {
		return b
	}
	b := &bucket{resetAt: time.Now().Add(rl.window)}
	rl.buckets[ip] = b
	return b
}

// evictLoop removes expired in-memory buckets so long-running servers don't
// grow without bound.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}

		now := time.Now()
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			b.mu.Lock()
			expired := now.After(b.resetAt)
			b.mu.Unlock()
			if expired {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
