package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/redistore/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a Locker implementation
// adheres to the defined interface contract.
// The locker must give up on a held key within a few seconds.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	prefix := "contract-test-lock-" + time.Now().Format("20060102150405") + ":"

	t.Run("Lock and Unlock", func(t *testing.T) {
		key := prefix + "a"

		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "Lock should not return error")
		require.NoError(t, unlock(ctx), "Unlock should not return error")

		// Released keys can be locked again right away.
		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		key := prefix + "b"

		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		_, err = locker.Lock(ctx, key, 5*time.Second)
		assert.ErrorIs(t, err, domain.ErrRetriesExhausted, "A held key should exhaust retries")
	})

	t.Run("Independent Keys", func(t *testing.T) {
		unlock1, err := locker.Lock(ctx, prefix+"c1", 5*time.Second)
		require.NoError(t, err)
		unlock2, err := locker.Lock(ctx, prefix+"c2", 5*time.Second)
		require.NoError(t, err, "Different keys should not contend")

		assert.NoError(t, unlock1(ctx))
		assert.NoError(t, unlock2(ctx))
	})

	t.Run("Unlock Twice", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, prefix+"d", 5*time.Second)
		require.NoError(t, err)

		assert.NoError(t, unlock(ctx))
		assert.NoError(t, unlock(ctx), "A repeated unlock should be a no-op")
	})
}
