package topics

import (
	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// ChatChunk carries streamed assistant reply snapshots, keyed by session id.
var ChatChunk = pubsub.NewEvent[domain.ChatChunkEvent](topicmgr.TopicConfig{
	Name:        "assistant.chat.chunk",
	Module:      "assistant",
	Description: "A cumulative snapshot of an assistant reply being streamed",
	Example:     `{"sessionId":"default","messageId":"ai-0b7c","chunk":"I found some","isComplete":false}`,
	Metadata: map[string]interface{}{
		"key": "sessionId",
	},
})

// Register adds the assistant topics to manager.
func Register(manager *topicmgr.Manager) error {
	return manager.RegisterAll(ChatChunk.Topic())
}
