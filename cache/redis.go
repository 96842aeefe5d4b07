package cache

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Global Redis client. Every consumer degrades gracefully when Redis is
// unavailable: locks fall back to database-level constraints, caches to
// direct reads, the event queue to synchronous no-ops.
var (
	redisClient *redis.Client
	initOnce    sync.Once
	initialized bool
)

// InitRedis connects using REDIS_ADDR / REDIS_PASSWORD / REDIS_DB from the
// environment. A failed connection is logged, not fatal.
func InitRedis() error {
	var initErr error

	initOnce.Do(func() {
		redisAddr := os.Getenv("REDIS_ADDR")
		if redisAddr == "" {
			redisAddr = "localhost:6379"
		}
		redisPassword := os.Getenv("REDIS_PASSWORD")
		redisDb := 0
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				redisDb = db
			}
		}

		log.Printf("connecting to redis at %s", redisAddr)

		client := redis.NewClient(&redis.Options{
			Addr:        redisAddr,
			Password:    redisPassword,
			DB:          redisDb,
			DialTimeout: 3 * time.Second,
			ReadTimeout: 3 * time.Second,
			PoolSize:    10,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := client.Ping(ctx).Result(); err != nil {
			log.Printf("redis unavailable, running without cache/locks: %v", err)
			initErr = err
			return
		}

		redisClient = client
		initialized = true
		log.Println("redis connection initialized")
	})

	return initErr
}

// GetClient returns the Redis client, or ErrRedisNotAvailable when Redis
// was not reachable at startup
func GetClient() (*redis.Client, error) {
	if !initialized || redisClient == nil {
		return nil, ErrRedisNotAvailable
	}
	return redisClient, nil
}

// CloseRedis closes the connection pool
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("failed to close redis connection: %v", err)
		}
	}
}
