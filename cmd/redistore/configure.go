package main

import (
	"fmt"
	"os"

	redisAdapter "github.com/aretw0/redistore/pkg/adapters/redis"
	"github.com/aretw0/redistore/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Enable keyspace expiry notifications on the server",
	Long: `Ensures "notify-keyspace-events" contains K and x, keeping flags already set.
Servers that disable CONFIG are reported as NOT CONFIGURED and must be set up manually.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger, err := newLogger(cfg)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		client := redisAdapter.NewClient(cfg.Addr, cfg.Password, cfg.DB)
		defer client.Close()

		status, err := redisAdapter.EnsureKeyspaceNotifications(cmd.Context(), client, logger)
		if err != nil {
			fmt.Printf("Error configuring notifications: %v\n", err)
			os.Exit(1)
		}

		tui.NewPrinter(os.Stdout, tui.IsTerminal(os.Stdout)).Status("notify-keyspace-events", string(status))
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
