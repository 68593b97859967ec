// Package main is the entry point for the initiative tracker server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "initiative-api",
	Short: "Tabletop initiative tracker server",
	Long:  `initiative-api serves a shared D&D initiative tracker: combat rosters, d20 roll resolution, drag-and-drop turn ordering, and campaign namespaces synced live across devices.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
