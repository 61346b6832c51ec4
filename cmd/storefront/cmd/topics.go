package cmd

import (
	"github.com/spf13/cobra"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Explore the event topics published on the bus",
	Long: `The topics command lists and inspects the topics modules publish on the
in-process event bus.

Available subcommands:
  list      List all registered topics with optional filtering
  get       Get detailed information about a specific topic
  validate  Validate a topic name

Examples:
  storefront topics list
  storefront topics list --module catalog --format json
  storefront topics get assistant.chat.chunk
  storefront topics validate catalog.product.changed`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
