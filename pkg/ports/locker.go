package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// Locker is a best-effort distributed lock primitive.
type Locker interface {
	// Lock tries to acquire the lock for key, retrying under its own policy.
	// When the lock stays held by someone else for the whole retry window it
	// returns an error matching domain.ErrRetriesExhausted; any other error
	// is an infrastructure failure.
	// The returned UnlockFunc must be called to release the lock before ttl.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
