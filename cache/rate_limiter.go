package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a request may proceed.
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// TokenBucketRateLimiter is a Redis-backed token bucket. All instances
// sharing a key share the bucket, so the limit holds across replicas.
type TokenBucketRateLimiter struct {
	client *redis.Client
	key    string
	rate   int // tokens refilled per second
	burst  int // bucket capacity
}

// NewTokenBucketRateLimiter creates a token bucket limiter under the given key.
func NewTokenBucketRateLimiter(client *redis.Client, key string, rate, burst int) *TokenBucketRateLimiter {
	return &TokenBucketRateLimiter{
		client: client,
		key:    fmt.Sprintf("rate_limit:%s", key),
		rate:   rate,
		burst:  burst,
	}
}

// Allow refills and consumes one token atomically via a Lua script.
func (l *TokenBucketRateLimiter) Allow(ctx context.Context) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	script := `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local burst = tonumber(ARGV[3])
	local period = 1

	local tokens_key = key .. ":tokens"
	local timestamp_key = key .. ":ts"

	local tokens = tonumber(redis.call("get", tokens_key) or burst)
	local last_update = tonumber(redis.call("get", timestamp_key) or 0)

	local elapsed = math.max(0, now - last_update)
	local new_tokens = math.min(burst, tokens + elapsed * rate)

	if new_tokens < 1 then
		return 0
	end

	new_tokens = new_tokens - 1

	redis.call("setex", tokens_key, period * 2, new_tokens)
	redis.call("setex", timestamp_key, period * 2, now)

	return 1
	`

	now := time.Now().Unix()
	keys := []string{l.key}
	args := []interface{}{now, l.rate, l.burst}

	result, err := l.client.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		return false, err
	}

	return result.(int64) == 1, nil
}

// SlidingWindowRateLimiter counts requests in a rolling window using a
// sorted set of request IDs. Stricter than the token bucket near the
// boundary, used for the vote-casting endpoint.
type SlidingWindowRateLimiter struct {
	client     *redis.Client
	key        string
	windowSize time.Duration
	limit      int
}

// NewSlidingWindowRateLimiter creates a sliding window limiter under the given key.
func NewSlidingWindowRateLimiter(client *redis.Client, key string, windowSize time.Duration, limit int) *SlidingWindowRateLimiter {
	return &SlidingWindowRateLimiter{
		client:     client,
		key:        fmt.Sprintf("sliding_window:%s", key),
		windowSize: windowSize,
		limit:      limit,
	}
}

// Allow records the request and checks the window count.
func (l *SlidingWindowRateLimiter) Allow(ctx context.Context) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	now := time.Now().UnixNano() / int64(time.Millisecond)
	windowStart := now - int64(l.windowSize/time.Millisecond)
	requestID := uuid.New().String()

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, l.key, redis.Z{Score: float64(now), Member: requestID})
	pipe.ZRemRangeByScore(ctx, l.key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZCard(ctx, l.key)
	pipe.Expire(ctx, l.key, l.windowSize*2)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	count := cmds[2].(*redis.IntCmd).Val()

	// Over the limit: take this request back out so a rejected burst does
	// not keep the window full.
	if count > int64(l.limit) {
		l.client.ZRem(ctx, l.key, requestID)
		return false, nil
	}

	return true, nil
}

// VoteRateLimiter layers a global token bucket over per-user sliding
// windows for the vote endpoints.
type VoteRateLimiter struct {
	client        *redis.Client
	globalLimiter RateLimiter
	keyPrefix     string
	window        time.Duration
	userLimit     int

	mu       sync.Mutex
	limiters map[uint]RateLimiter
}

// NewVoteRateLimiter creates the layered limiter. globalRate/globalBurst
// bound total throughput; userLimit bounds each user within window.
func NewVoteRateLimiter(client *redis.Client, keyPrefix string, globalRate, globalBurst int, window time.Duration, userLimit int) *VoteRateLimiter {
	return &VoteRateLimiter{
		client:        client,
		globalLimiter: NewTokenBucketRateLimiter(client, keyPrefix+":global", globalRate, globalBurst),
		keyPrefix:     keyPrefix,
		window:        window,
		userLimit:     userLimit,
		limiters:      make(map[uint]RateLimiter),
	}
}

func (l *VoteRateLimiter) userLimiter(userID uint) RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[userID]; ok {
		return limiter
	}

	limiter := NewSlidingWindowRateLimiter(l.client,
		fmt.Sprintf("%s:user:%d", l.keyPrefix, userID), l.window, l.userLimit)
	l.limiters[userID] = limiter
	return limiter
}

// AllowUser checks the global bucket first, then the user's window.
func (l *VoteRateLimiter) AllowUser(ctx context.Context, userID uint) (bool, error) {
	allowed, err := l.globalLimiter.Allow(ctx)
	if err != nil || !allowed {
		if err != nil {
			log.Printf("global rate limit check failed: %v", err)
		}
		return allowed, err
	}

	return l.userLimiter(userID).Allow(ctx)
}
