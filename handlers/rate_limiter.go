package handlers

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"suggestion-board-backend/auth"
	"suggestion-board-backend/cache"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiters holds one in-process token bucket per client IP. Buckets are
// pruned when idle so the map does not grow with every crawler.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiterEntry
	rate     rate.Limit
	burst    int
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(r rate.Limit, burst int) *ipLimiters {
	l := &ipLimiters{
		limiters: make(map[string]*ipLimiterEntry),
		rate:     r,
		burst:    burst,
	}
	go l.cleanupLoop()
	return l
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (l *ipLimiters) cleanupLoop() {
	for {
		time.Sleep(time.Minute)

		l.mu.Lock()
		for ip, entry := range l.limiters {
			if time.Since(entry.lastSeen) > 3*time.Minute {
				delete(l.limiters, ip)
			}
		}
		l.mu.Unlock()
	}
}

// IPRateLimitMiddleware bounds request rate per client IP before any other
// work happens. Limits come from RATE_LIMIT_PER_IP (requests per second);
// unset disables the middleware.
func IPRateLimitMiddleware() gin.HandlerFunc {
	perIP := 0
	if s := os.Getenv("RATE_LIMIT_PER_IP"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			perIP = n
		}
	}
	if perIP == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newIPLimiters(rate.Limit(perIP), perIP*2)
	log.Printf("per-IP rate limit enabled: %d req/s", perIP)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// VoteRateLimitMiddleware applies the Redis-backed layered limiter to the
// vote endpoints: a global token bucket plus a per-user sliding window.
// With Redis down the middleware passes everything through.
func VoteRateLimitMiddleware() gin.HandlerFunc {
	var limiter *cache.VoteRateLimiter
	if client, err := cache.GetClient(); err == nil {
		limiter = cache.NewVoteRateLimiter(client, "votes", 200, 400, 10*time.Second, 20)
	} else {
		log.Printf("vote rate limiter disabled: %v", err)
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		// The auth middleware runs first, so an absent viewer means the
		// request is about to be rejected anyway.
		viewer := auth.CurrentViewer(c)
		if viewer == nil {
			c.Next()
			return
		}

		allowed, err := limiter.AllowUser(c.Request.Context(), viewer.UserID)
		if err != nil {
			// Redis hiccups should not block voting.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many vote requests, slow down"})
			return
		}

		c.Next()
	}
}
