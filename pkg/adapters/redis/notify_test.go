package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/redistore/internal/logging"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFlags(t *testing.T) {
	tests := map[string]string{
		"":     "Kx",
		"K":    "Kx",
		"x":    "xK",
		"Kx":   "Kx",
		"xK":   "xK",
		"Eg$":  "Eg$Kx",
		"KA":   "KA",
		"AKE":  "AKE",
		"Elsh": "ElshKx",
	}
	for in, want := range tests {
		assert.Equal(t, want, mergeFlags(in), "flags %q", in)
	}
}

func TestIsRestricted(t *testing.T) {
	assert.False(t, isRestricted(assert.AnError))
	assert.True(t, isRestricted(errString("ERR unknown command 'config'")))
	assert.True(t, isRestricted(errString("NOPERM this user has no permissions to run the 'config|set' command")))
	assert.False(t, isRestricted(errString("dial tcp: connection refused")))
}

// miniredis does not implement CONFIG, like many managed Redis services.
func TestEnsureKeyspaceNotifications_Unsupported(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	status, err := EnsureKeyspaceNotifications(context.Background(), client, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, StatusNotConfigured, status)
}

func TestEnsureKeyspaceNotifications_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err := EnsureKeyspaceNotifications(context.Background(), client, logging.NewNop())
	assert.Error(t, err)
}

type errString string

func (e errString) Error() string { return string(e) }
