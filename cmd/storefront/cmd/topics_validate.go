package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nfrund/storefront/cmd/storefront/internal/topics"
	"github.com/nfrund/storefront/internal/topicmgr"
)

var topicsValidateCmd = &cobra.Command{
	Use:   "validate <topic-name>",
	Short: "Validate a topic name",
	Long: `Check a topic name against the naming rules, and its definition when the
topic is registered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := topics.Initialize()
		if err != nil {
			return err
		}
		validator := topicmgr.NewValidator()
		name := args[0]

		nameErr := validator.ValidateName(name)
		var defErr error
		topic, registered := manager.Get(name)
		if registered && nameErr == nil {
			defErr = validator.ValidateDefinition(topic)
		}
		topics.DisplayValidationResult(cmd.OutOrStdout(), name, topic, nameErr, defErr)
		if nameErr != nil {
			return nameErr
		}
		return defErr
	},
}

func init() {
	topicsCmd.AddCommand(topicsValidateCmd)
}
