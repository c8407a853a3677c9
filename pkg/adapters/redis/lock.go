package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Default retry policy of the Locker.
const (
	DefaultRetryCount = 10
	DefaultRetryDelay = 100 * time.Millisecond
)

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.Locker using Redis SET NX PX.
type Locker struct {
	client     backend.UniversalClient
	retryCount int
	retryDelay time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithRetry sets how many extra attempts are made while the lock is held
// elsewhere, and the pause between them.
func WithRetry(count int, delay time.Duration) LockerOption {
	return func(l *Locker) {
		l.retryCount = count
		l.retryDelay = delay
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{
		client:     client,
		retryCount: DefaultRetryCount,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires the lock for key, which is used verbatim as the Redis key.
// It makes 1+retryCount attempts and then fails with domain.ErrRetriesExhausted.
// A ttl below one millisecond fails with domain.ErrInvalidTTL: SETNX without
// an expiry would hold the lock forever.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if ttl < time.Millisecond {
		return nil, fmt.Errorf("lock %s: %w", key, domain.ErrInvalidTTL)
	}
	token := uuid.NewString()

	for attempt := 0; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return l.unlocker(key, token), nil
		}
		if attempt >= l.retryCount {
			return nil, fmt.Errorf("lock %s after %d attempts: %w", key, attempt+1, domain.ErrRetriesExhausted)
		}

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) unlocker(key, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
}
