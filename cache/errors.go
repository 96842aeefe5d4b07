package cache

import "errors"

var (
	// ErrRedisNotAvailable means Redis was not reachable at startup.
	ErrRedisNotAvailable = errors.New("redis not available")

	// ErrLockNotAcquired means the distributed lock could not be taken.
	ErrLockNotAcquired = errors.New("could not acquire distributed lock")
)
