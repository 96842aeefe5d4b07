package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"suggestion-board-backend/service"
)

// Cached board views expire quickly; votes move fast and staleness past a
// few seconds is visible to users. The event consumer additionally
// invalidates on every mutation.
const boardViewTTL = 30 * time.Second

// nullSentinel marks a cached "board does not exist" result.
const nullSentinel = "NULL"

// BoardViewCache caches projected board views in Redis with stampede
// protection: a miss takes a short distributed lock so only one request per
// key hits the database, and expiry gets jitter to avoid synchronized
// refills.
type BoardViewCache struct {
	lockService *DistributedLockService
}

// NewBoardViewCache creates the cache. It works lock-less (single loader
// guard disabled) when the lock service is nil.
func NewBoardViewCache(lockService *DistributedLockService) *BoardViewCache {
	return &BoardViewCache{lockService: lockService}
}

func boardViewKey(boardID uint, viewer *service.Viewer) string {
	// Views differ per viewer identity, so anonymous is the only broadly
	// shared entry; authenticated views are cached per user.
	if viewer == nil {
		return fmt.Sprintf("boardview:%d:anon", boardID)
	}
	if viewer.IsAdmin {
		return fmt.Sprintf("boardview:%d:admin:%d", boardID, viewer.UserID)
	}
	return fmt.Sprintf("boardview:%d:user:%d", boardID, viewer.UserID)
}

// GetBoardView returns the cached view or loads and caches it. A loader
// returning service.ErrBoardNotFound is cached as a null entry so repeated
// lookups of missing boards do not hammer the database.
func (c *BoardViewCache) GetBoardView(ctx context.Context, boardID uint, viewer *service.Viewer, loader func() (*service.BoardView, error)) (*service.BoardView, error) {
	client, err := GetClient()
	if err != nil {
		// No Redis: straight through to the loader.
		return loader()
	}

	key := boardViewKey(boardID, viewer)
	if view, null, ok := c.readEntry(ctx, key); ok {
		if null {
			return nil, service.ErrBoardNotFound
		}
		return view, nil
	}

	var view *service.BoardView
	load := func() error {
		// Double check: another request may have filled the key while we
		// waited for the lock.
		if cached, null, ok := c.readEntry(ctx, key); ok {
			if null {
				return service.ErrBoardNotFound
			}
			view = cached
			return nil
		}

		loaded, err := loader()
		if errors.Is(err, service.ErrBoardNotFound) {
			client.Set(ctx, key, nullSentinel, boardViewTTL/4)
			return err
		}
		if err != nil {
			return err
		}
		view = loaded

		data, _ := json.Marshal(loaded)
		expiration := boardViewTTL + time.Duration(rand.Intn(int(boardViewTTL/10)))
		client.Set(ctx, key, string(data), expiration)
		return nil
	}

	if c.lockService != nil {
		lockKey := "cache_lock:" + key
		err = c.lockService.WithLock(lockKey, 5*time.Second, load)
	} else {
		err = load()
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}

// readEntry reports a cache hit. null is set when the hit is the cached
// "board does not exist" sentinel.
func (c *BoardViewCache) readEntry(ctx context.Context, key string) (view *service.BoardView, null, ok bool) {
	client, err := GetClient()
	if err != nil {
		return nil, false, false
	}
	data, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, false, false
	}
	if data == nullSentinel {
		return nil, true, true
	}
	var decoded service.BoardView
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		log.Printf("failed to decode cached board view %s: %v", key, err)
		return nil, false, false
	}
	return &decoded, false, true
}

// InvalidateBoard drops every cached view of a board. Per-user keys are
// found by pattern; the board mutation rate makes the SCAN cost acceptable.
func (c *BoardViewCache) InvalidateBoard(ctx context.Context, boardID uint) {
	client, err := GetClient()
	if err != nil {
		return
	}

	pattern := fmt.Sprintf("boardview:%d:*", boardID)
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("failed to scan board view keys for board %d: %v", boardID, err)
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
