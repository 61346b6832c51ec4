package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		listOutputFormat, listModuleFilter, listScopeFilter = "table", "", ""
		getOutputFormat = "table"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "storefront v"+version+"\n", out)
}

func TestTopicsList(t *testing.T) {
	out, err := execute(t, "topics", "list", "--module", "assistant", "--scope", "module")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant.chat.chunk")
	assert.NotContains(t, out, "catalog.product.changed")
}

func TestTopicsList_NoMatch(t *testing.T) {
	out, err := execute(t, "topics", "list", "--module", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "No topics found matching: module 'checkout'")
}

func TestTopicsList_InvalidScope(t *testing.T) {
	_, err := execute(t, "topics", "list", "--scope", "global")
	assert.ErrorContains(t, err, "invalid scope")
}

func TestTopicsGet(t *testing.T) {
	out, err := execute(t, "topics", "get", "catalog.product.changed", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "catalog.product.changed"`)

	_, err = execute(t, "topics", "get", "catalog.product.deleted")
	assert.ErrorContains(t, err, "topic not found")
}

func TestTopicsValidate(t *testing.T) {
	out, err := execute(t, "topics", "validate", "catalog.product.changed")
	require.NoError(t, err)
	assert.Contains(t, out, "Topic 'catalog.product.changed' is valid")

	_, err = execute(t, "topics", "validate", "Catalog Product")
	assert.Error(t, err)
}
