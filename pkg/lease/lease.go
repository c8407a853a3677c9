package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/internal/metrics"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/ports"
)

// ReleaseFunc drops a held lease. Only the first call reaches the datastore;
// later calls return nil.
type ReleaseFunc func(ctx context.Context) error

// Func attempts to lease key. Each call is an independent acquisition.
//
// It fails with *domain.AlreadyLeasedError when another holder keeps the
// lease, and with *domain.LeaseError for anything else.
type Func func(ctx context.Context, key string) (ReleaseFunc, error)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for lease diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics records lease outcomes.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// Manager hands out leases on namespaced keys. It holds no per-lease state
// and is safe for concurrent use.
type Manager struct {
	locker  ports.Locker
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewManager creates a Manager. prefix is prepended verbatim to every key
// handed to locker, so it should already end with a separator.
func NewManager(locker ports.Locker, prefix string, opts ...Option) *Manager {
	m := &Manager{
		locker: locker,
		prefix: prefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the datastore key leased for key.
func (m *Manager) Key(key string) string {
	return m.prefix + key
}

// CreateLease returns a Func that leases keys for ttl. A lease that is
// never released expires on its own after ttl.
func (m *Manager) CreateLease(ttl time.Duration) Func {
	return func(ctx context.Context, key string) (ReleaseFunc, error) {
		return m.Acquire(ctx, key, ttl)
	}
}

// Acquire leases key for ttl. A ttl below one millisecond fails with a
// *domain.LeaseError wrapping domain.ErrInvalidTTL and never reaches the locker.
func (m *Manager) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	if ttl < time.Millisecond {
		m.metrics.ObserveLease(metrics.LeaseFailed)
		return nil, &domain.LeaseError{Key: key, Err: fmt.Errorf("%w: got %v", domain.ErrInvalidTTL, ttl)}
	}

	unlock, err := m.locker.Lock(ctx, m.Key(key), ttl)
	if err != nil {
		if errors.Is(err, domain.ErrRetriesExhausted) {
			m.metrics.ObserveLease(metrics.LeaseContended)
			return nil, &domain.AlreadyLeasedError{Key: key}
		}
		m.metrics.ObserveLease(metrics.LeaseFailed)
		m.logger.Debug("Lease acquisition failed", "key", key, "err", err)
		return nil, &domain.LeaseError{Key: key, Err: err}
	}

	m.metrics.ObserveLease(metrics.LeaseAcquired)
	return onceRelease(unlock), nil
}

func onceRelease(unlock ports.UnlockFunc) ReleaseFunc {
	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			err = unlock(ctx)
		})
		return err
	}
}
