package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfrund/storefront/cmd/storefront/internal/topics"
	"github.com/nfrund/storefront/internal/topicmgr"
)

var (
	listOutputFormat string
	listModuleFilter string
	listScopeFilter  string
)

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List every topic the application modules register, in table or JSON format.

Examples:
  storefront topics list                    # all topics as a table
  storefront topics list --format json      # all topics as JSON
  storefront topics list --module assistant # assistant topics only
  storefront topics list --scope module     # module-level topics only`,
	RunE: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) error {
	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("initialize topics: %w", err)
	}

	var scope topicmgr.TopicScope
	if listScopeFilter != "" {
		if scope = parseScope(listScopeFilter); scope == "" {
			return fmt.Errorf("invalid scope %q, valid scopes: framework, module", listScopeFilter)
		}
	}

	var list []topicmgr.Topic
	switch {
	case listModuleFilter != "":
		list = manager.ListByModule(listModuleFilter)
	case scope != "":
		list = manager.ListByScope(scope)
	default:
		list = manager.List()
	}
	if listModuleFilter != "" && scope != "" {
		filtered := list[:0]
		for _, t := range list {
			if t.Scope() == scope {
				filtered = append(filtered, t)
			}
		}
		list = filtered
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		var filters []string
		if listModuleFilter != "" {
			filters = append(filters, fmt.Sprintf("module '%s'", listModuleFilter))
		}
		if listScopeFilter != "" {
			filters = append(filters, fmt.Sprintf("scope '%s'", listScopeFilter))
		}
		message := "No topics found"
		if len(filters) > 0 {
			message += " matching: " + strings.Join(filters, ", ")
		}
		fmt.Fprintln(out, message)
		return nil
	}

	switch listOutputFormat {
	case "json":
		return topics.DisplayTopicsJSON(out, list)
	case "table":
		topics.DisplayTopicsTable(out, list)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, use 'table' or 'json'", listOutputFormat)
	}
}

// parseScope converts string scope to topicmgr.TopicScope
func parseScope(scope string) topicmgr.TopicScope {
	switch strings.ToLower(scope) {
	case "framework":
		return topicmgr.ScopeFramework
	case "module":
		return topicmgr.ScopeModule
	default:
		return ""
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)
	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	topicsListCmd.Flags().StringVarP(&listModuleFilter, "module", "m", "", "Filter topics by module name")
	topicsListCmd.Flags().StringVarP(&listScopeFilter, "scope", "s", "", "Filter topics by scope (framework, module)")
}
