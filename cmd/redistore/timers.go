package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aretw0/redistore/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var armCmd = &cobra.Command{
	Use:   "arm <namespace> <key> <ttl>",
	Short: "Arm a timeout trigger",
	Long:  `Writes <namespace>:<key>:trigger with the given TTL (a duration like 1500ms, or milliseconds).`,
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, err := parseDuration(args[2])
		if err != nil {
			fmt.Printf("Invalid ttl %q: %v\n", args[2], err)
			os.Exit(1)
		}

		store, _ := mustOpenStore(cmd, nil)
		defer store.Close()

		if err := store.SetTimeout(cmd.Context(), args[0], args[1], ttl); err != nil {
			fmt.Printf("Error arming timeout: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Armed %s (fires in %v)\n", store.TriggerKey(args[0], args[1]), ttl)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <namespace>",
	Short: "Print timeout events of a namespace until interrupted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, _ := mustOpenStore(cmd, nil)
		defer store.Close()

		printer := tui.NewPrinter(os.Stdout, tui.IsTerminal(os.Stdout))

		t, err := store.CreateTimer(ctx, args[0])
		if err != nil {
			fmt.Printf("Error creating timer: %v\n", err)
			os.Exit(1)
		}
		t.OnTimeout(func(key string) { printer.Timeout(t.Namespace(), key, time.Now()) })
		t.OnError(printer.Error)

		select {
		case <-t.Ready():
			fmt.Printf("Watching %s (Ctrl+C to stop)\n", t.Namespace())
		case <-ctx.Done():
			return
		}
		<-ctx.Done()
	},
}

func init() {
	rootCmd.AddCommand(armCmd)
	rootCmd.AddCommand(watchCmd)
}

// parseDuration accepts a Go duration or a bare number of milliseconds.
func parseDuration(raw string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(raw)
}

// holdUntil waits for d, or until ctx is done when d is zero.
func holdUntil(ctx context.Context, d time.Duration) {
	if d <= 0 {
		<-ctx.Done()
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
