package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redistore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
addr: redis.internal:6380
db: 2
namespace: cache
preconfigured: true
lock:
  retry_count: 3
  retry_delay: 250ms
log_level: debug
`)

	cfg, err := LoadWithEnv(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, "cache", cfg.Namespace)
	assert.True(t, cfg.Preconfigured)
	assert.Equal(t, 3, cfg.Lock.RetryCount)
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.RetryDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr, "unset keys keep their default")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "addr: from-file:6379\nlock:\n  retry_count: 3\n")

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		"REDISTORE_ADDR":             "from-env:6379",
		"REDISTORE_DB":               "4",
		"REDISTORE_PRECONFIGURED":    "true",
		"REDISTORE_LOCK_RETRY_DELAY": "1s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env:6379", cfg.Addr)
	assert.Equal(t, 4, cfg.DB)
	assert.True(t, cfg.Preconfigured)
	assert.Equal(t, 3, cfg.Lock.RetryCount)
	assert.Equal(t, time.Second, cfg.Lock.RetryDelay)
}

func TestLoad_Errors(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), noEnv)
	assert.Error(t, err)

	_, err = LoadWithEnv(writeConfig(t, "addr: [unclosed"), noEnv)
	assert.Error(t, err)

	_, err = LoadWithEnv(writeConfig(t, "unknown_key: 1"), noEnv)
	assert.Error(t, err, "unknown keys are rejected")

	_, err = LoadWithEnv("", envMap(map[string]string{"REDISTORE_ADDR": " "}))
	assert.Error(t, err)
}
