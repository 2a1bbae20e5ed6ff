// Package cmd holds the CLI entry points.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "libraryd",
	Short: "Library management protocol server",
	Long:  "TCP server and tooling for the length-prefixed JSON library management protocol.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
