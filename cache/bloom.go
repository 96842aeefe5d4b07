package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// BloomFilter is a Redis bitmap bloom filter. It fronts board lookups so
// requests for IDs that were never created skip the database entirely.
type BloomFilter struct {
	client    *redis.Client
	key       string
	hashCount int
}

// NewBloomFilter creates a filter backed by the given bitmap key.
func NewBloomFilter(client *redis.Client, key string, hashCount int) *BloomFilter {
	return &BloomFilter{
		client:    client,
		key:       "bloom:" + key,
		hashCount: hashCount,
	}
}

// Add records an element in the filter.
func (bf *BloomFilter) Add(ctx context.Context, item string) error {
	if bf.client == nil {
		return ErrRedisNotAvailable
	}

	pipe := bf.client.Pipeline()

	for i := 0; i < bf.hashCount; i++ {
		pipe.SetBit(ctx, bf.key, bf.hash(item, i), 1)
	}
	pipe.Expire(ctx, bf.key, 24*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

// Contains reports whether the element may be present. A false result is
// definitive; a true result can be a false positive.
func (bf *BloomFilter) Contains(ctx context.Context, item string) (bool, error) {
	if bf.client == nil {
		return false, ErrRedisNotAvailable
	}

	pipe := bf.client.Pipeline()

	var cmds []*redis.IntCmd
	for i := 0; i < bf.hashCount; i++ {
		cmds = append(cmds, pipe.GetBit(ctx, bf.key, bf.hash(item, i)))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	for _, cmd := range cmds {
		if cmd.Val() == 0 {
			return false, nil
		}
	}

	return true, nil
}

func (bf *BloomFilter) hash(key string, seed int) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	h.Write([]byte{byte(seed)})
	return int64(h.Sum64() % uint64(1<<30))
}

var boardFilter *BloomFilter

// InitBoardFilter builds the board-ID filter and seeds it with the known
// IDs. Returns nil when Redis is unavailable.
func InitBoardFilter(boardIDs []uint) *BloomFilter {
	client, err := GetClient()
	if err != nil {
		log.Printf("board bloom filter disabled: %v", err)
		return nil
	}

	boardFilter = NewBloomFilter(client, "boards", 5)
	ctx := context.Background()
	for _, id := range boardIDs {
		if err := boardFilter.Add(ctx, fmt.Sprintf("%d", id)); err != nil {
			log.Printf("failed to seed board filter: %v", err)
			break
		}
	}
	return boardFilter
}

// GetBoardFilter returns the board-ID filter, or nil when disabled.
func GetBoardFilter() *BloomFilter {
	return boardFilter
}

// AddBoardToFilter records a newly created board's ID.
func AddBoardToFilter(boardID uint) {
	if boardFilter == nil {
		return
	}
	if err := boardFilter.Add(context.Background(), fmt.Sprintf("%d", boardID)); err != nil {
		log.Printf("failed to add board %d to filter: %v", boardID, err)
	}
}

// BoardMayExist reports whether the board ID passes the filter. With the
// filter disabled every ID passes.
func BoardMayExist(ctx context.Context, boardID uint) bool {
	if boardFilter == nil {
		return true
	}
	ok, err := boardFilter.Contains(ctx, fmt.Sprintf("%d", boardID))
	if err != nil {
		return true
	}
	return ok
}
