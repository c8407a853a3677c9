package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. REDISTORE_ADDR.
const EnvPrefix = "REDISTORE_"

// Config is the on-disk configuration of the redistore CLI.
type Config struct {
	Addr          string     `yaml:"addr" mapstructure:"addr"`
	Password      string     `yaml:"password" mapstructure:"password"`
	DB            int        `yaml:"db" mapstructure:"db"`
	Namespace     string     `yaml:"namespace" mapstructure:"namespace"`
	Preconfigured bool       `yaml:"preconfigured" mapstructure:"preconfigured"`
	Lock          LockConfig `yaml:"lock" mapstructure:"lock"`
	LogLevel      string     `yaml:"log_level" mapstructure:"log_level"`
	HTTPAddr      string     `yaml:"http_addr" mapstructure:"http_addr"`
}

// LockConfig is the retry policy of the lease lock.
type LockConfig struct {
	RetryCount int           `yaml:"retry_count" mapstructure:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:     "localhost:6379",
		LogLevel: "info",
		HTTPAddr: ":8080",
		Lock: LockConfig{
			RetryCount: 10,
			RetryDelay: 100 * time.Millisecond,
		},
	}
}

// envKeys maps environment variable suffixes to config paths.
var envKeys = map[string][]string{
	"ADDR":             {"addr"},
	"PASSWORD":         {"password"},
	"DB":               {"db"},
	"NAMESPACE":        {"namespace"},
	"PRECONFIGURED":    {"preconfigured"},
	"LOCK_RETRY_COUNT": {"lock", "retry_count"},
	"LOCK_RETRY_DELAY": {"lock", "retry_delay"},
	"LOG_LEVEL":        {"log_level"},
	"HTTP_ADDR":        {"http_addr"},
}

// Load reads the YAML file at path (optional when empty) and applies
// REDISTORE_* environment overrides on top of it.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for suffix, keyPath := range envKeys {
		if val, ok := lookup(EnvPrefix + suffix); ok {
			setPath(raw, keyPath, val)
		}
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("invalid config: addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid config: db must not be negative")
	}
	if c.Lock.RetryCount < 0 {
		return fmt.Errorf("invalid config: lock.retry_count must not be negative")
	}
	return nil
}

func setPath(m map[string]any, path []string, val string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = val
}
