package topics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/nfrund/storefront/internal/topicmgr"
)

// TopicDisplay represents a topic for display purposes
type TopicDisplay struct {
	Name        string                 `json:"name"`
	Scope       string                 `json:"scope"`
	Module      string                 `json:"module"`
	Description string                 `json:"description"`
	Example     string                 `json:"example"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func toDisplay(topic topicmgr.Topic) TopicDisplay {
	return TopicDisplay{
		Name:        topic.Name(),
		Scope:       string(topic.Scope()),
		Module:      topic.Module(),
		Description: topic.Description(),
		Example:     topic.Example(),
		Metadata:    topic.Metadata(),
	}
}

func sortByName(topics []topicmgr.Topic) []topicmgr.Topic {
	sorted := append([]topicmgr.Topic(nil), topics...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	return sorted
}

// DisplayTopicsTable writes topics as an aligned table sorted by name.
func DisplayTopicsTable(out io.Writer, topics []topicmgr.Topic) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tSCOPE\tMODULE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----\t------\t-----------")
	for _, topic := range sortByName(topics) {
		module := topic.Module()
		if module == "" {
			module = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			topic.Name(),
			topic.Scope(),
			module,
			truncateString(topic.Description(), 50))
	}
}

// DisplayTopicsJSON writes topics as an indented JSON document.
func DisplayTopicsJSON(out io.Writer, topics []topicmgr.Topic) error {
	sorted := sortByName(topics)
	displays := make([]TopicDisplay, len(sorted))
	for i, topic := range sorted {
		displays[i] = toDisplay(topic)
	}

	output := struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{
		Topics: displays,
		Count:  len(displays),
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// DisplayTopicDetails writes every field of a single topic.
func DisplayTopicDetails(out io.Writer, topic topicmgr.Topic, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(toDisplay(topic))
	case "table", "":
	default:
		return fmt.Errorf("unsupported output format %q, use 'table' or 'json'", format)
	}

	fmt.Fprintf(out, "Name:        %s\n", topic.Name())
	fmt.Fprintf(out, "Scope:       %s\n", topic.Scope())
	fmt.Fprintf(out, "Module:      %s\n", topic.Module())
	fmt.Fprintf(out, "Description: %s\n", topic.Description())
	fmt.Fprintf(out, "Example:     %s\n", topic.Example())

	metadata := topic.Metadata()
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(out, "Metadata:")
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %v\n", k, metadata[k])
		}
	}
	return nil
}

// DisplayValidationResult reports the outcome of validating name. topic is
// nil when the name is not registered.
func DisplayValidationResult(out io.Writer, name string, topic topicmgr.Topic, nameErr, defErr error) {
	switch {
	case nameErr != nil:
		fmt.Fprintf(out, "❌ Topic name validation failed: %v\n", nameErr)
	case defErr != nil:
		fmt.Fprintf(out, "❌ Topic validation failed: %v\n", defErr)
	case topic == nil:
		fmt.Fprintf(out, "✅ Topic name '%s' is valid (not registered)\n", name)
	default:
		fmt.Fprintf(out, "✅ Topic '%s' is valid\n", topic.Name())
		fmt.Fprintf(out, "   Scope: %s\n", topic.Scope())
		fmt.Fprintf(out, "   Module: %s\n", topic.Module())
	}
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
