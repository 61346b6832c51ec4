package assistant

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var defaultReplies []byte

// Replies picks the assistant's answer to a user message.
type Replies interface {
	Lookup(message string) string
}

// ReplyTable maps known prompts to canned replies.
type ReplyTable struct {
	replies  map[string]string
	fallback string
}

type replyFile struct {
	Replies []struct {
		Prompt string `yaml:"prompt"`
		Reply  string `yaml:"reply"`
	} `yaml:"replies"`
	Fallback string `yaml:"fallback"`
}

// DefaultReplies returns the built-in reply table.
func DefaultReplies() *ReplyTable {
	table, err := ParseReplies(defaultReplies)
	if err != nil {
		panic(fmt.Sprintf("embedded replies.yaml: %v", err))
	}
	return table
}

// ParseReplies reads a reply table from YAML. The fallback must contain one %s
// and no other verb. Every reply needs at least one word.
func ParseReplies(data []byte) (*ReplyTable, error) {
	var file replyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse replies: %w", err)
	}
	if strings.Count(file.Fallback, "%s") != 1 || strings.Count(file.Fallback, "%") != 1 {
		return nil, fmt.Errorf("parse replies: fallback must contain exactly one %%s and no other %% verbs")
	}

	table := &ReplyTable{replies: make(map[string]string, len(file.Replies)), fallback: file.Fallback}
	for _, r := range file.Replies {
		if strings.TrimSpace(r.Prompt) == "" || strings.TrimSpace(r.Reply) == "" {
			return nil, fmt.Errorf("parse replies: prompt and reply are required")
		}
		table.replies[r.Prompt] = r.Reply
	}
	return table, nil
}

// Lookup returns the canned reply for an exact prompt, or the fallback with
// message echoed back.
func (t *ReplyTable) Lookup(message string) string {
	if reply, ok := t.replies[message]; ok {
		return reply
	}
	return fmt.Sprintf(t.fallback, message)
}
