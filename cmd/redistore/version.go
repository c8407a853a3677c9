package main

import (
	"fmt"

	"github.com/aretw0/redistore"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of redistore",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("redistore version %s\n", redistore.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
