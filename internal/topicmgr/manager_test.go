package topicmgr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/storefront/internal/topicmgr"
)

func TestManager(t *testing.T) {
	t.Run("Register and Get", func(t *testing.T) {
		m := topicmgr.NewManager()
		topic := topicmgr.DefineModule(topicmgr.TopicConfig{
			Name:        "catalog.product.changed",
			Module:      "catalog",
			Description: "A product changed",
		})

		require.NoError(t, m.Register(topic))

		found, ok := m.Get("catalog.product.changed")
		assert.True(t, ok, "Topic should exist after registration")
		assert.Equal(t, topicmgr.ScopeModule, found.Scope())
		assert.Equal(t, 1, m.Count())
	})

	t.Run("Prevent Duplicate Registration", func(t *testing.T) {
		m := topicmgr.NewManager()
		topic := topicmgr.DefineModule(topicmgr.TopicConfig{
			Name:        "assistant.chat.chunk",
			Module:      "assistant",
			Description: "A chunk",
		})
		require.NoError(t, m.Register(topic))

		err := m.Register(topic)
		var topicErr *topicmgr.TopicError
		require.True(t, errors.As(err, &topicErr))
		assert.Equal(t, topicmgr.ErrorDuplicateRegistration, topicErr.Type)
	})

	t.Run("Reject Invalid Definitions", func(t *testing.T) {
		m := topicmgr.NewManager()
		cases := map[string]topicmgr.Topic{
			"bad name":         topicmgr.DefineModule(topicmgr.TopicConfig{Name: "Catalog.Bad", Module: "catalog", Description: "x"}),
			"missing desc":     topicmgr.DefineModule(topicmgr.TopicConfig{Name: "catalog.x", Module: "catalog"}),
			"foreign module":   topicmgr.DefineModule(topicmgr.TopicConfig{Name: "checkout.x", Module: "catalog", Description: "x"}),
			"framework prefix": topicmgr.DefineFramework(topicmgr.TopicConfig{Name: "catalog.x", Description: "x"}),
		}
		for name, topic := range cases {
			err := m.Register(topic)
			assert.Error(t, err, name)
		}
		assert.Equal(t, 0, m.Count())
	})

	t.Run("Filter and Lookup", func(t *testing.T) {
		m := topicmgr.NewManager()
		require.NoError(t, m.RegisterAll(
			topicmgr.DefineModule(topicmgr.TopicConfig{Name: "catalog.b", Module: "catalog", Description: "b"}),
			topicmgr.DefineModule(topicmgr.TopicConfig{Name: "catalog.a", Module: "catalog", Description: "a"}),
			topicmgr.DefineFramework(topicmgr.TopicConfig{Name: "server.started", Description: "s"}),
		))

		catalog := m.ListByModule("catalog")
		require.Len(t, catalog, 2)
		assert.Equal(t, "catalog.a", catalog[0].Name(), "List should be sorted by name")
		assert.Len(t, m.ListByScope(topicmgr.ScopeFramework), 1)

		_, err := m.Lookup("nope")
		var topicErr *topicmgr.TopicError
		require.True(t, errors.As(err, &topicErr))
		assert.Equal(t, topicmgr.ErrorTopicNotFound, topicErr.Type)
	})
}
