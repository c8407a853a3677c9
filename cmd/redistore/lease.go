package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/redistore/pkg/domain"
	"github.com/spf13/cobra"
)

// exitAlreadyLeased is the exit code when another process holds the lease.
const exitAlreadyLeased = 2

var leaseCmd = &cobra.Command{
	Use:   "lease <key>",
	Short: "Acquire a lease, hold it, then release it",
	Long: `Acquires the lease on <key>, holds it for --hold (or until interrupted when zero)
and releases it. Exits with status 2 when the lease is held by another process.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		hold, _ := cmd.Flags().GetDuration("hold")
		key := args[0]

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, _ := mustOpenStore(cmd, nil)
		defer store.Close()

		release, err := store.CreateLease(ttl)(ctx, key)
		if errors.Is(err, domain.ErrAlreadyLeased) {
			fmt.Printf("Lease on '%s' is held by another process\n", key)
			store.Close()
			os.Exit(exitAlreadyLeased)
		}
		if err != nil {
			fmt.Printf("Error acquiring lease: %v\n", err)
			store.Close()
			os.Exit(1)
		}

		fmt.Printf("Acquired lease on '%s' (ttl %v)\n", store.Key(key), ttl)
		holdUntil(ctx, hold)

		// ctx may already be canceled by the signal.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			fmt.Printf("Error releasing lease (will expire via TTL): %v\n", err)
			return
		}
		fmt.Printf("Released lease on '%s'\n", store.Key(key))
	},
}

func init() {
	rootCmd.AddCommand(leaseCmd)
	leaseCmd.Flags().Duration("ttl", 30*time.Second, "Lease lifetime if never released")
	leaseCmd.Flags().Duration("hold", 0, "How long to hold the lease (0 waits for Ctrl+C)")
}
