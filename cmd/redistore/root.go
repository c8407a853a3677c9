package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/redistore"
	"github.com/aretw0/redistore/internal/config"
	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/internal/metrics"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redistore",
	Short: "Redistore manages leases and timeout triggers in Redis",
	Long: `Redistore is a namespaced key-value facade over Redis with distributed leases
and keyspace-notification based timeouts. This tool arms and watches timers,
probes leases and inspects stored entries.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("addr", "", "Redis address (overrides config)")
	rootCmd.PersistentFlags().Int("db", 0, "Redis database (overrides config)")
	rootCmd.PersistentFlags().String("namespace", "", "Root namespace (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and environment, then applies flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("db") {
		cfg.DB, _ = flags.GetInt("db")
	}
	if flags.Changed("namespace") {
		cfg.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// openStore builds a Store from the command's configuration.
func openStore(ctx context.Context, cmd *cobra.Command, m *metrics.Metrics) (*redistore.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, cfg, err
	}

	store, err := redistore.New(ctx, redistore.Config{
		Addr:          cfg.Addr,
		Password:      cfg.Password,
		DB:            cfg.DB,
		Namespace:     cfg.Namespace,
		Preconfigured: cfg.Preconfigured,
	},
		redistore.WithLogger(logger),
		redistore.WithMetrics(m),
		redistore.WithLockRetry(cfg.Lock.RetryCount, cfg.Lock.RetryDelay),
	)
	return store, cfg, err
}

func mustOpenStore(cmd *cobra.Command, m *metrics.Metrics) (*redistore.Store, config.Config) {
	store, cfg, err := openStore(cmd.Context(), cmd, m)
	if err != nil {
		fmt.Printf("Error initializing store: %v\n", err)
		os.Exit(1)
	}
	return store, cfg
}
