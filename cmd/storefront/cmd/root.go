package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront real-time backend",
	Long: `storefront runs the storefront backend: the product catalogue, live
product updates, the streaming shopping assistant and checkout.

Available commands:
  serve     Start the HTTP server
  seed      Load sample products into an empty product store
  topics    Inspect the event topics published on the bus

Use "storefront [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
