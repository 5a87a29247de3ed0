package httpmiddleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures the sliding window limiter.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// KeyFunc picks the bucket of a request. Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
}

// window counts requests of one key in the current and previous fixed
// windows. The previous count is weighted by its overlap with the sliding
// window.
type window struct {
	prev      float64
	curr      float64
	currStart time.Time
}

type limiter struct {
	max    int
	size   time.Duration
	mu     sync.Mutex
	counts map[string]*window
}

func newLimiter(max int, size time.Duration) *limiter {
	return &limiter{max: max, size: size, counts: make(map[string]*window)}
}

// take consumes one request for key if allowed.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.counts[key]
	if !found {
		w = &window{currStart: now.Truncate(l.size)}
		l.counts[key] = w
	}

	if elapsed := now.Sub(w.currStart); elapsed >= l.size {
		if elapsed >= 2*l.size {
			w.prev = 0
		} else {
			w.prev = w.curr
		}
		w.curr = 0
		w.currStart = now.Truncate(l.size)
	}

	overlap := 1 - now.Sub(w.currStart).Seconds()/l.size.Seconds()
	used := w.prev*math.Max(overlap, 0) + w.curr
	resetAt = w.currStart.Add(l.size)
	if used >= float64(l.max) {
		return 0, resetAt, false
	}

	w.curr++
	return max(int(float64(l.max)-used-1), 0), resetAt, true
}

// evict drops keys idle for two windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.counts {
		if now.Sub(w.currStart) >= 2*l.size {
			delete(l.counts, key)
		}
	}
}

// RateLimit limits requests per key. Exceeding requests get 429 with the
// standard error body. Every response carries X-RateLimit-* headers. Idle
// keys are evicted until ctx ends.
func RateLimit(ctx context.Context, cfg RateLimitConfig) gin.HandlerFunc {
	l := newLimiter(cfg.Max, cfg.Window)
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	limit := strconv.Itoa(cfg.Max)
	return func(c *gin.Context) {
		now := time.Now()
		remaining, resetAt, ok := l.take(keyFunc(c), now)

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		if !ok {
			retry := max(resetAt.Sub(now), 0)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
