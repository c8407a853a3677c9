package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/redistore/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Separator joins namespace segments.
const Separator = ":"

// Prefix turns a namespace into a key prefix: "n" becomes "n:" and the
// empty namespace stays empty.
func Prefix(namespace string) string {
	namespace = strings.TrimSuffix(namespace, Separator)
	if namespace == "" {
		return ""
	}
	return namespace + Separator
}

// Store exposes namespaced hash-field operations over Redis.
type Store struct {
	client backend.UniversalClient
	prefix string
}

// NewStore creates a Store whose keys are all prefixed by namespace.
func NewStore(client backend.UniversalClient, namespace string) *Store {
	return &Store{
		client: client,
		prefix: Prefix(namespace),
	}
}

// NewClient creates the go-redis client used for ordinary commands.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// Key returns key with the store's namespace applied.
func (s *Store) Key(key string) string {
	return s.prefix + key
}

// GetProp returns the raw value of field in the hash at key.
// It returns domain.ErrNotFound when the field is missing.
func (s *Store) GetProp(ctx context.Context, key, field string) ([]byte, error) {
	val, err := s.client.HGet(ctx, s.Key(key), field).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s.%s: %w", key, field, err)
	}
	return val, nil
}

// GetProps returns every field of the hash at key.
func (s *Store) GetProps(ctx context.Context, key string) (map[string]string, error) {
	vals, err := s.client.HGetAll(ctx, s.Key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return vals, nil
}

// SetProp sets field in the hash at key.
func (s *Store) SetProp(ctx context.Context, key, field string, value any) error {
	if err := s.client.HSet(ctx, s.Key(key), field, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", key, field, err)
	}
	return nil
}

// IncrPropBy increments the integer field in the hash at key and returns the new value.
func (s *Store) IncrPropBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, s.Key(key), field, incr).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s.%s: %w", key, field, err)
	}
	return n, nil
}

// DelProp removes field from the hash at key.
func (s *Store) DelProp(ctx context.Context, key, field string) error {
	return s.client.HDel(ctx, s.Key(key), field).Err()
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.Key(key)).Err()
}

// Expire sets a TTL on key with millisecond precision.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.PExpire(ctx, s.Key(key), ttl).Err()
}
