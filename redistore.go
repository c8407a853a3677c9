package redistore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/internal/metrics"
	redisAdapter "github.com/aretw0/redistore/pkg/adapters/redis"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/events"
	"github.com/aretw0/redistore/pkg/lease"
	"github.com/aretw0/redistore/pkg/ports"
	"github.com/aretw0/redistore/pkg/timer"
	backend "github.com/redis/go-redis/v9"
)

// closeTimeout bounds how long Close waits for timers to unsubscribe.
const closeTimeout = 5 * time.Second

// Config holds the connection and namespace settings of a Store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Namespace prefixes every key. "n" yields keys like "n:k"; empty means no prefix.
	Namespace string
	// Preconfigured skips enabling keyspace notifications on the server.
	Preconfigured bool
}

// Store is a namespaced facade over Redis with leases and timeout events.
type Store struct {
	client     *backend.Client
	ownsClient bool
	cfg        Config
	prefix     string

	hash     *redisAdapter.Store
	locker   ports.Locker
	lockOpts []redisAdapter.LockerOption
	leases   *lease.Manager
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	timers []*timer.Timer

	onError events.Observers[error]
}

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithClient uses an existing client for ordinary commands instead of
// dialing cfg.Addr. The Store does not close it.
func WithClient(client *backend.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records timer and lease activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLocker replaces the Redis lock primitive used by leases.
func WithLocker(locker ports.Locker) Option {
	return func(s *Store) {
		s.locker = locker
	}
}

// WithLockRetry sets the retry policy of the default Redis locker.
func WithLockRetry(count int, delay time.Duration) Option {
	return func(s *Store) {
		s.lockOpts = append(s.lockOpts, redisAdapter.WithRetry(count, delay))
	}
}

// New creates a Store. Unless cfg.Preconfigured is set it tries to enable
// keyspace expiry notifications; a server that refuses is logged as a
// warning and does not fail construction.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{
		cfg:    cfg,
		prefix: redisAdapter.Prefix(cfg.Namespace),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		if cfg.Addr == "" {
			return nil, &domain.ConfigError{Field: "addr", Reason: "is required when no client is provided"}
		}
		s.client = redisAdapter.NewClient(cfg.Addr, cfg.Password, cfg.DB)
		s.ownsClient = true
	}
	if s.locker == nil {
		s.locker = redisAdapter.NewLocker(s.client, s.lockOpts...)
	}

	s.hash = redisAdapter.NewStore(s.client, cfg.Namespace)
	s.leases = lease.NewManager(s.locker, s.prefix,
		lease.WithLogger(s.logger),
		lease.WithMetrics(s.metrics),
	)

	if !cfg.Preconfigured {
		if _, err := redisAdapter.EnsureKeyspaceNotifications(ctx, s.client, s.logger); err != nil {
			s.logger.Error("Failed to configure keyspace notifications", "err", err)
		}
	}

	return s, nil
}

// Key returns key with the store's namespace applied.
func (s *Store) Key(key string) string {
	return s.prefix + key
}

// Client returns the client used for ordinary commands.
func (s *Store) Client() *backend.Client {
	return s.client
}

// OnError registers fn to receive errors from every timer created by the store.
func (s *Store) OnError(fn func(err error)) { s.onError.On(fn) }

// CreateLease returns a function that leases namespaced keys for ttl.
func (s *Store) CreateLease(ttl time.Duration) lease.Func {
	return s.leases.CreateLease(ttl)
}

// CreateTimer creates a Timer for the sub-namespace namespace. Each timer
// opens its own subscriber connection.
func (s *Store) CreateTimer(ctx context.Context, namespace string) (*timer.Timer, error) {
	sub := s.newSubscriber()
	t, err := timer.New(ctx, s.client, sub, s.Key(namespace),
		timer.WithDB(s.client.Options().DB),
		timer.WithLogger(s.logger),
		timer.WithMetrics(s.metrics),
	)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}
	t.OnError(s.onError.Forward())

	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t, nil
}

// SetTimeout arms a timeout for key in the sub-namespace namespace without
// opening a subscriber connection. A Timer created for namespace, in this or
// another process, reports its expiry.
func (s *Store) SetTimeout(ctx context.Context, namespace, key string, ttl time.Duration) error {
	if err := timer.Arm(ctx, s.client, s.Key(namespace), key, ttl); err != nil {
		return err
	}
	s.metrics.ObserveArm(strings.TrimSuffix(s.Key(namespace), ":"))
	return nil
}

// TriggerKey returns the datastore key armed for key in the sub-namespace namespace.
func (s *Store) TriggerKey(namespace, key string) string {
	return timer.TriggerKey(s.Key(namespace), key)
}

// newSubscriber dials a client with the connection settings of the store's
// client. Options() is not copied wholesale: after NewClient it carries
// runtime state such as the push notification processor, which must not be
// shared between clients.
func (s *Store) newSubscriber() *backend.Client {
	parent := s.client.Options()
	return backend.NewClient(&backend.Options{
		Network:             parent.Network,
		Addr:                parent.Addr,
		ClientName:          parent.ClientName,
		Dialer:              parent.Dialer,
		Protocol:            parent.Protocol,
		Username:            parent.Username,
		Password:            parent.Password,
		CredentialsProvider: parent.CredentialsProvider,
		DB:                  parent.DB,
		DialTimeout:         parent.DialTimeout,
		ReadTimeout:         parent.ReadTimeout,
		WriteTimeout:        parent.WriteTimeout,
		TLSConfig:           parent.TLSConfig,
	})
}

// GetProp returns the raw value of field in the hash at key.
// It returns domain.ErrNotFound when the field is missing.
func (s *Store) GetProp(ctx context.Context, key, field string) ([]byte, error) {
	return s.hash.GetProp(ctx, key, field)
}

// GetProps returns every field of the hash at key.
func (s *Store) GetProps(ctx context.Context, key string) (map[string]string, error) {
	return s.hash.GetProps(ctx, key)
}

// SetProp sets field in the hash at key.
func (s *Store) SetProp(ctx context.Context, key, field string, value any) error {
	return s.hash.SetProp(ctx, key, field, value)
}

// IncrPropBy increments field in the hash at key and returns the new value.
func (s *Store) IncrPropBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	return s.hash.IncrPropBy(ctx, key, field, incr)
}

// DelProp removes field from the hash at key.
func (s *Store) DelProp(ctx context.Context, key, field string) error {
	return s.hash.DelProp(ctx, key, field)
}

// Del removes key. Deleting a trigger key before it fires suppresses its
// timeout, but the race with expiry cannot be ruled out.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.hash.Del(ctx, key)
}

// Expire sets a TTL on key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.hash.Expire(ctx, key, ttl)
}

// Close stops every timer and closes the client if the store created it.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	var errs []error
	for _, t := range timers {
		if err := t.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.ownsClient {
		if err := s.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ping checks connectivity of the client used for ordinary commands.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
