package main

import (
	"fmt"
	"os"

	"github.com/aretw0/redistore/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <key>...",
	Short: "Show the hash fields stored under one or more keys",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := mustOpenStore(cmd, nil)
		defer store.Close()

		render, err := tui.NewRenderer(tui.IsTerminal(os.Stdout))
		if err != nil {
			fmt.Printf("Error initializing renderer: %v\n", err)
			os.Exit(1)
		}

		hasError := false
		for _, key := range args {
			props, err := store.GetProps(cmd.Context(), key)
			if err != nil {
				fmt.Printf("Error reading '%s': %v\n", key, err)
				hasError = true
				continue
			}

			out, err := render(tui.HashTable(store.Key(key), props))
			if err != nil {
				fmt.Printf("Error rendering '%s': %v\n", key, err)
				hasError = true
				continue
			}
			fmt.Print(out)
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
