package keyspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/keyspace"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupListener(t *testing.T, keyspacePattern string) (*miniredis.Miniredis, *keyspace.Listener) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l, err := keyspace.NewListener(client, keyspace.Config{Keyspace: keyspacePattern})
	require.NoError(t, err)
	return mr, l
}

func waitReady(t *testing.T, l *keyspace.Listener) {
	t.Helper()
	select {
	case <-l.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("listener never confirmed the subscription")
	}
}

func TestNewListener_RequiresKeyspace(t *testing.T) {
	_, err := keyspace.NewListener(nil, keyspace.Config{})

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "keyspace", cfgErr.Field)
}

func TestListener_Pattern(t *testing.T) {
	l, err := keyspace.NewListener(nil, keyspace.Config{Keyspace: "ns:*:trigger", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "__keyspace@3__:ns:*:trigger", l.Pattern())
}

func TestListener_EmitsExpiredKeys(t *testing.T) {
	mr, l := setupListener(t, "ns:*:trigger")

	listened := make(chan struct{}, 1)
	expired := make(chan string, 4)
	l.OnListen(func() { listened <- struct{}{} })
	l.OnExpired(func(key string) { expired <- key })

	require.NoError(t, l.Listen(context.Background()))
	defer l.StopListening(context.Background())
	waitReady(t, l)
	<-listened

	mr.Publish("__keyspace@0__:ns:ignored:trigger", "set")
	mr.Publish("__keyspace@0__:ns:ignored:trigger", "del")
	mr.Publish("__keyspace@0__:ns:session-1:trigger", "expired")

	select {
	case key := <-expired:
		assert.Equal(t, "session-1", key)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an expired event")
	}

	select {
	case key := <-expired:
		t.Fatalf("unexpected extra event for %q", key)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListener_IgnoresOtherNamespaces(t *testing.T) {
	mr, l := setupListener(t, "ns:*:trigger")

	expired := make(chan string, 4)
	l.OnExpired(func(key string) { expired <- key })
	require.NoError(t, l.Listen(context.Background()))
	defer l.StopListening(context.Background())
	waitReady(t, l)

	mr.Publish("__keyspace@0__:other:k:trigger", "expired")
	mr.Publish("__keyspace@0__:ns:mine:trigger", "expired")

	select {
	case key := <-expired:
		assert.Equal(t, "mine", key)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an expired event")
	}
}

func TestListener_StopIsTerminal(t *testing.T) {
	_, l := setupListener(t, "ns:*:trigger")

	stopped := make(chan struct{}, 1)
	l.OnStop(func() { stopped <- struct{}{} })

	require.NoError(t, l.Listen(context.Background()))
	waitReady(t, l)

	assert.ErrorIs(t, l.Listen(context.Background()), domain.ErrAlreadyListening)

	l.StopListening(context.Background())
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a stop event")
	}

	assert.ErrorIs(t, l.Listen(context.Background()), domain.ErrAlreadyListening)
}

func TestListener_ProxiesConnectionErrors(t *testing.T) {
	mr, l := setupListener(t, "ns:*:trigger")

	errs := make(chan error, 8)
	l.OnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	require.NoError(t, l.Listen(context.Background()))
	defer l.StopListening(context.Background())
	waitReady(t, l)

	mr.Close()

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the connection error to be proxied")
	}
}

func TestListener_StopWhileIdle(t *testing.T) {
	_, l := setupListener(t, "ns:*:trigger")

	stops := 0
	l.OnStop(func() { stops++ })

	l.StopListening(context.Background())
	l.StopListening(context.Background())

	assert.Equal(t, 1, stops)
	assert.ErrorIs(t, l.Listen(context.Background()), domain.ErrAlreadyListening)
}
