package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/redistore/pkg/adapters/redis"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefix(t *testing.T) {
	assert.Equal(t, "n:", redis.Prefix("n"))
	assert.Equal(t, "n:", redis.Prefix("n:"))
	assert.Equal(t, "", redis.Prefix(""))
}

func TestRedisStore_Key(t *testing.T) {
	assert.Equal(t, "n:k", redis.NewStore(nil, "n").Key("k"))
	assert.Equal(t, "k", redis.NewStore(nil, "").Key("k"))
}

func TestRedisStore_Props(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewStore(client, "cache")
	ctx := context.Background()

	_, err := store.GetProp(ctx, "entry", "value")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetProp(ctx, "entry", "value", []byte("payload")))
	assert.Equal(t, "payload", mr.HGet("cache:entry", "value"))

	val, err := store.GetProp(ctx, "entry", "value")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	n, err := store.IncrPropBy(ctx, "entry", "hits", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = store.IncrPropBy(ctx, "entry", "hits", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	props, err := store.GetProps(ctx, "entry")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"value": "payload", "hits": "5"}, props)

	require.NoError(t, store.DelProp(ctx, "entry", "hits"))
	_, err = store.GetProp(ctx, "entry", "hits")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_ExpireAndDel(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewStore(client, "cache")
	ctx := context.Background()

	require.NoError(t, store.SetProp(ctx, "entry", "value", "x"))
	require.NoError(t, store.Expire(ctx, "entry", 1500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, mr.TTL("cache:entry"))

	require.NoError(t, store.Del(ctx, "entry"))
	assert.False(t, mr.Exists("cache:entry"))
}
