package topicmgr

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator checks topic definitions before they are registered.
type Validator struct {
	namePattern   *regexp.Regexp
	modulePattern *regexp.Regexp
}

// NewValidator creates a new topic validator
func NewValidator() *Validator {
	// Topic names are dot separated lowercase segments: module.entity.action
	// Examples: catalog.product.changed, assistant.chat.chunk
	return &Validator{
		namePattern:   regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)*$`),
		modulePattern: regexp.MustCompile(`^[a-z][a-z0-9_]*$`),
	}
}

// frameworkPrefixes lists the name prefixes framework topics may use.
var frameworkPrefixes = []string{"bus.", "server."}

// ValidateDefinition validates a topic definition
func (v *Validator) ValidateDefinition(topic Topic) error {
	if topic == nil {
		return fmt.Errorf("topic cannot be nil")
	}

	if err := v.ValidateName(topic.Name()); err != nil {
		return fmt.Errorf("invalid topic name: %w", err)
	}

	if strings.TrimSpace(topic.Description()) == "" {
		return fmt.Errorf("topic description cannot be empty")
	}

	switch topic.Scope() {
	case ScopeFramework:
		if topic.Module() != "" {
			return fmt.Errorf("framework topics should not have a module")
		}
		for _, prefix := range frameworkPrefixes {
			if strings.HasPrefix(topic.Name(), prefix) {
				return nil
			}
		}
		return fmt.Errorf("framework topic must start with one of %v", frameworkPrefixes)
	case ScopeModule:
		if !v.modulePattern.MatchString(topic.Module()) {
			return fmt.Errorf("module name %q must be lowercase alphanumeric with underscores", topic.Module())
		}
		if !strings.HasPrefix(topic.Name(), topic.Module()+".") {
			return fmt.Errorf("module topic %q must be prefixed with its module %q", topic.Name(), topic.Module())
		}
		return nil
	default:
		return fmt.Errorf("invalid topic scope: %s", topic.Scope())
	}
}

// ValidateName checks if a topic name follows the naming convention
func (v *Validator) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(name) > 100 {
		return fmt.Errorf("name too long (max 100 characters)")
	}

	if !v.namePattern.MatchString(name) {
		return fmt.Errorf("name must follow pattern: module.entity.action (lowercase, alphanumeric, dots only)")
	}

	return nil
}
