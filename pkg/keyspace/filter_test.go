package keyspace_test

import (
	"testing"

	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/keyspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPattern = "__keyspace@0__:ns:*:trigger"

func TestFilter_MatchExpired(t *testing.T) {
	f, err := keyspace.NewFilter(testPattern)
	require.NoError(t, err)

	key, ok := f.Match(testPattern, "__keyspace@0__:ns:user-42:trigger", []byte("expired"))
	assert.True(t, ok)
	assert.Equal(t, "user-42", key)
}

func TestFilter_KeyMayContainSeparators(t *testing.T) {
	f, err := keyspace.NewFilter(testPattern)
	require.NoError(t, err)

	key, ok := f.Match(testPattern, "__keyspace@0__:ns:a:b:c:trigger", []byte("expired"))
	assert.True(t, ok)
	assert.Equal(t, "a:b:c", key)
}

func TestFilter_IgnoresOtherPayloads(t *testing.T) {
	f, err := keyspace.NewFilter(testPattern)
	require.NoError(t, err)

	channel := "__keyspace@0__:ns:k:trigger"
	for _, payload := range []string{"set", "del", "rename_from", "expire", "", "EXPIRED", "expired "} {
		_, ok := f.Match(testPattern, channel, []byte(payload))
		assert.False(t, ok, "payload %q must not match", payload)
	}
}

func TestFilter_IgnoresForeignPattern(t *testing.T) {
	f, err := keyspace.NewFilter(testPattern)
	require.NoError(t, err)

	_, ok := f.Match("__keyspace@0__:other:*:trigger", "__keyspace@0__:ns:k:trigger", []byte("expired"))
	assert.False(t, ok)
}

func TestFilter_IgnoresUnparseableChannels(t *testing.T) {
	f, err := keyspace.NewFilter(testPattern)
	require.NoError(t, err)

	for _, channel := range []string{
		"__keyspace@0__:ns::trigger",    // empty capture
		"__keyspace@0__:ns:k",           // no suffix
		"__keyspace@1__:ns:k:trigger",   // other db
		"prefix__keyspace@0__:ns:k:trigger",
		"",
	} {
		_, ok := f.Match(testPattern, channel, []byte("expired"))
		assert.False(t, ok, "channel %q must not match", channel)
	}
}

func TestFilter_EscapesMetaCharacters(t *testing.T) {
	pattern := "__keyspace@0__:a.b(c)+:*:trigger"
	f, err := keyspace.NewFilter(pattern)
	require.NoError(t, err)

	_, ok := f.Match(pattern, "__keyspace@0__:aXb(c)+:k:trigger", []byte("expired"))
	assert.False(t, ok, "'.' must be matched literally")

	key, ok := f.Match(pattern, "__keyspace@0__:a.b(c)+:k:trigger", []byte("expired"))
	assert.True(t, ok)
	assert.Equal(t, "k", key)
}

func TestNewFilter_ConfigErrors(t *testing.T) {
	for _, pattern := range []string{"", "__keyspace@0__:ns:k:trigger", "__keyspace@0__:*:*:trigger"} {
		_, err := keyspace.NewFilter(pattern)
		var cfgErr *domain.ConfigError
		assert.ErrorAs(t, err, &cfgErr, "pattern %q", pattern)
	}
}
