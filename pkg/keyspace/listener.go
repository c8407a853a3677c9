package keyspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/events"
	backend "github.com/redis/go-redis/v9"
)

// errorPause is how long the receive loop waits after a failed read before
// reading again. Reconnecting is left to the client.
const errorPause = 100 * time.Millisecond

type state int

const (
	stateIdle state = iota
	stateListening
	stateStopped
)

// Config configures a Listener.
type Config struct {
	// Keyspace is the key pattern to watch, e.g. "users:*:trigger".
	Keyspace string
	// DB is the logical database the notifications are published for.
	DB int
}

// ChannelPattern returns the keyspace notification channel pattern for keyspace in db.
func ChannelPattern(db int, keyspace string) string {
	return fmt.Sprintf("__keyspace@%d__:%s", db, keyspace)
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// Listener watches keyspace notifications for expiring keys.
//
// It owns a dedicated connection: once Listen is called the client is in
// subscribe mode and must not be used for ordinary commands.
// A stopped Listener cannot listen again; construct a new one.
type Listener struct {
	client *backend.Client
	filter *Filter
	logger *slog.Logger

	mu        sync.Mutex
	state     state
	pubsub    *backend.PubSub
	cancel    context.CancelFunc
	ready     chan struct{}
	readyOnce sync.Once

	onListen  events.Signal
	onStop    events.Signal
	onExpired events.Observers[string]
	onError   events.Observers[error]
}

// NewListener creates an idle Listener. It fails with a *domain.ConfigError
// when no keyspace is configured.
func NewListener(client *backend.Client, cfg Config, opts ...Option) (*Listener, error) {
	if cfg.Keyspace == "" {
		return nil, &domain.ConfigError{Field: "keyspace", Reason: "is required"}
	}
	filter, err := NewFilter(ChannelPattern(cfg.DB, cfg.Keyspace))
	if err != nil {
		return nil, err
	}

	l := &Listener{
		client: client,
		filter: filter,
		logger: logging.NewNop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Pattern returns the channel pattern the listener subscribes to.
func (l *Listener) Pattern() string {
	return l.filter.Pattern()
}

// OnListen registers fn to run once the subscription is confirmed.
func (l *Listener) OnListen(fn func()) { l.onListen.On(fn) }

// OnStop registers fn to run after StopListening.
func (l *Listener) OnStop(fn func()) { l.onStop.On(fn) }

// OnExpired registers fn to receive the key of every expired trigger.
func (l *Listener) OnExpired(fn func(key string)) { l.onExpired.On(fn) }

// OnError registers fn to receive connection and unsubscribe errors.
func (l *Listener) OnError(fn func(err error)) { l.onError.On(fn) }

// Ready is closed once the subscription has been confirmed by the server.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Listen subscribes to the channel pattern and starts delivering events
// from a background goroutine. It returns immediately; wait on Ready for
// the subscribe handshake.
func (l *Listener) Listen(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateIdle {
		return domain.ErrAlreadyListening
	}

	l.pubsub = l.client.PSubscribe(ctx, l.filter.Pattern())
	l.state = stateListening

	loopCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.receive(loopCtx, l.pubsub)

	l.logger.Debug("Listening for expired keys", "pattern", l.filter.Pattern())
	return nil
}

// StopListening unsubscribes and releases the subscription. An unsubscribe
// failure is reported as an error event; the listener stops either way and
// emits stop. Stopping an idle listener only emits stop; stopping a stopped
// listener does nothing.
func (l *Listener) StopListening(ctx context.Context) {
	l.mu.Lock()
	switch l.state {
	case stateStopped:
		l.mu.Unlock()
		return
	case stateIdle:
		l.state = stateStopped
		l.mu.Unlock()
		l.onStop.Emit()
		return
	}
	l.state = stateStopped
	pubsub, cancel := l.pubsub, l.cancel
	l.mu.Unlock()

	if err := pubsub.PUnsubscribe(ctx, l.filter.Pattern()); err != nil {
		l.onError.Emit(fmt.Errorf("failed to unsubscribe from %s: %w", l.filter.Pattern(), err))
	}
	cancel()
	_ = pubsub.Close()

	l.logger.Debug("Stopped listening for expired keys", "pattern", l.filter.Pattern())
	l.onStop.Emit()
}

func (l *Listener) receive(ctx context.Context, pubsub *backend.PubSub) {
	for {
		msg, err := pubsub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, backend.ErrClosed) {
				return
			}
			l.onError.Emit(err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(errorPause):
			}
			continue
		}

		switch m := msg.(type) {
		case *backend.Subscription:
			if m.Kind == "psubscribe" && m.Channel == l.filter.Pattern() {
				l.readyOnce.Do(func() {
					close(l.ready)
					l.onListen.Emit()
				})
			}
		case *backend.Message:
			l.handle(m.Pattern, m.Channel, []byte(m.Payload))
		}
	}
}

func (l *Listener) handle(pattern, channel string, payload []byte) {
	key, ok := l.filter.Match(pattern, channel, payload)
	if !ok {
		return
	}
	l.logger.Debug("Key expired", "key", key)
	l.onExpired.Emit(key)
}
