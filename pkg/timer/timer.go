package timer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/internal/metrics"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/events"
	"github.com/aretw0/redistore/pkg/keyspace"
	backend "github.com/redis/go-redis/v9"
)

// TriggerSuffix is appended to every trigger key.
const TriggerSuffix = ":trigger"

// Option configures a Timer.
type Option func(*Timer)

// WithLogger sets the logger for the timer and its listener.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Timer) {
		t.logger = logger
	}
}

// WithMetrics records armed triggers, timeouts and errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Timer) {
		t.metrics = m
	}
}

// WithDB sets the logical database whose notifications are watched.
// It must match the database the write client is connected to.
func WithDB(db int) Option {
	return func(t *Timer) {
		t.db = db
	}
}

// Timer arms TTL trigger keys in one namespace and reports their expiry
// as timeout events.
//
// Delivery is at-least-once: a timeout may be reported again after a
// reconnect, and a trigger deleted just before expiry may still fire.
// Timeout handlers must be idempotent.
type Timer struct {
	pub       *backend.Client
	sub       *backend.Client
	name      string
	namespace string
	db        int
	listener  *keyspace.Listener
	logger    *slog.Logger
	metrics   *metrics.Metrics

	onTimeout events.Observers[string]
	onError   events.Observers[error]

	closeOnce sync.Once
	closeErr  error
}

// New creates a Timer for namespace and starts listening right away.
//
// pub is the shared client used to write trigger keys. sub is dedicated to
// the timer: it is switched to subscribe mode and closed by Close.
func New(ctx context.Context, pub, sub *backend.Client, namespace string, opts ...Option) (*Timer, error) {
	name := strings.TrimSuffix(namespace, ":")
	if name == "" {
		return nil, &domain.ConfigError{Field: "namespace", Reason: "timer namespace is required"}
	}

	t := &Timer{
		pub:       pub,
		sub:       sub,
		name:      name,
		namespace: name + ":",
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	listener, err := keyspace.NewListener(sub, keyspace.Config{
		Keyspace: t.namespace + "*" + TriggerSuffix,
		DB:       t.db,
	}, keyspace.WithLogger(t.logger))
	if err != nil {
		return nil, err
	}
	t.listener = listener

	listener.OnError(func(err error) {
		t.metrics.ObserveError("timer")
		t.logger.Debug("Timer listener error", "namespace", t.name, "err", err)
	})
	listener.OnError(t.onError.Forward())
	listener.OnExpired(func(key string) {
		t.metrics.ObserveTimeout(t.name)
		t.onTimeout.Emit(key)
	})

	if err := listener.Listen(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Namespace returns the namespace the timer arms keys in, without the trailing separator.
func (t *Timer) Namespace() string {
	return t.name
}

// OnTimeout registers fn to receive the logical key of each elapsed timeout.
func (t *Timer) OnTimeout(fn func(key string)) { t.onTimeout.On(fn) }

// OnError registers fn to receive errors from the timer's subscriber connection.
func (t *Timer) OnError(fn func(err error)) { t.onError.On(fn) }

// OnListen registers fn to run once the subscription is confirmed.
// Use Ready when the registration may happen after the confirmation.
func (t *Timer) OnListen(fn func()) { t.listener.OnListen(fn) }

// Ready is closed once the timer's subscription is confirmed. Timeouts armed
// before that may fire unobserved.
func (t *Timer) Ready() <-chan struct{} {
	return t.listener.Ready()
}

// TriggerKey returns the datastore key armed for key.
func (t *Timer) TriggerKey(key string) string {
	return t.namespace + key + TriggerSuffix
}

// SetTimeout arms a timeout for key that fires after ttl. Re-arming a key
// before it fires resets its TTL.
//
// ttl is sent with millisecond precision and is not validated: a value below
// one millisecond is rejected by the datastore and nothing is armed.
func (t *Timer) SetTimeout(ctx context.Context, key string, ttl time.Duration) error {
	if err := arm(ctx, t.pub, t.TriggerKey(key), key, ttl); err != nil {
		return err
	}
	t.metrics.ObserveArm(t.name)
	return nil
}

// Close stops listening and closes the dedicated subscriber connection.
// Calls after the first return the first call's result.
func (t *Timer) Close(ctx context.Context) error {
	t.closeOnce.Do(func() {
		t.listener.StopListening(ctx)
		t.closeErr = t.sub.Close()
	})
	return t.closeErr
}

// TriggerKey returns the datastore key armed for key in namespace.
// A trailing separator on namespace is ignored.
func TriggerKey(namespace, key string) string {
	return strings.TrimSuffix(namespace, ":") + ":" + key + TriggerSuffix
}

// Arm writes the trigger key for key in namespace without subscribing.
// Any Timer listening on namespace reports its expiry. It behaves like
// Timer.SetTimeout for callers that only arm timeouts.
func Arm(ctx context.Context, client backend.UniversalClient, namespace, key string, ttl time.Duration) error {
	if strings.TrimSuffix(namespace, ":") == "" {
		return &domain.ConfigError{Field: "namespace", Reason: "timer namespace is required"}
	}
	return arm(ctx, client, TriggerKey(namespace, key), key, ttl)
}

func arm(ctx context.Context, client backend.UniversalClient, triggerKey, key string, ttl time.Duration) error {
	if err := client.Do(ctx, "psetex", triggerKey, ttl.Milliseconds(), "").Err(); err != nil {
		return fmt.Errorf("failed to arm timeout for %s: %w", key, err)
	}
	return nil
}
