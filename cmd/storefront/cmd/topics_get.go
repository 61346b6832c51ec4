package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/storefront/cmd/storefront/internal/topics"
)

var getOutputFormat string

var topicsGetCmd = &cobra.Command{
	Use:   "get <topic-name>",
	Short: "Get detailed information about a specific topic",
	Long: `Show the name, scope, module, description, example payload and metadata
of a registered topic.

Examples:
  storefront topics get catalog.product.changed
  storefront topics get assistant.chat.chunk --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := topics.Initialize()
		if err != nil {
			return fmt.Errorf("initialize topics: %w", err)
		}
		topic, err := manager.Lookup(args[0])
		if err != nil {
			return fmt.Errorf("%w\n\nUse 'storefront topics list' to see all available topics", err)
		}
		return topics.DisplayTopicDetails(cmd.OutOrStdout(), topic, getOutputFormat)
	},
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)
	topicsGetCmd.Flags().StringVarP(&getOutputFormat, "format", "f", "table", "Output format (table, json)")
}
