package middleware

import (
	"net/http"
	"sync"
	"time"

	"calhaforte/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipLimiter is a fixed-window per-IP request counter. Each limiter owns its
// map and a janitor goroutine that drops entries for IPs gone quiet, so the
// map cannot grow without bound.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	message string
	seen    map[string]*windowEntry
}

type windowEntry struct {
	count    int
	resetsAt time.Time
}

const janitorInterval = 5 * time.Minute

func newIPLimiter(limit int, window time.Duration, message string) *ipLimiter {
	l := &ipLimiter{
		limit:   limit,
		window:  window,
		message: message,
		seen:    make(map[string]*windowEntry),
	}
	go l.janitor()
	return l
}

func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e := l.seen[ip]
	if e == nil || now.After(e.resetsAt) {
		e = &windowEntry{resetsAt: now.Add(l.window)}
		l.seen[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.resetsAt
}

func (l *ipLimiter) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, e := range l.seen {
			if now.After(e.resetsAt) {
				delete(l.seen, ip)
				purged++
			}
		}
		remaining := len(l.seen)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, resetsAt := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", resetsAt.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// RateLimiter caps requests per IP across the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window, "too many requests, try again shortly").handler()
}

// LoginRateLimiter keeps credential stuffing off the login endpoint.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute, "too many login attempts, try again in a minute").handler()
}
