package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "catalog.product.changed").
	Topic string
	// Key identifies the entity the message is about, such as a product id or
	// chat session id. Subscribers filter on it; the bus never does.
	Key string
	// Payload contains the raw message data (JSON for typed events).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., timestamps).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	// Publish delivers msg to every listener registered on msg.Topic at the
	// time of the call. There is no backlog: later listeners never see it.
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with the handler
	// in a background goroutine until ctx is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Streamer exposes a subscription as a channel.
type Streamer interface {
	// Stream registers a listener on topic and returns every message published
	// after registration, in publish order. The channel is closed and the
	// listener deregistered once ctx is canceled, the bus is closed, or the
	// listener falls too far behind to accept a message.
	Stream(ctx context.Context, topic string) (<-chan Message, error)
}

// Bus is the full in-process broadcast channel: one instance per process,
// created at startup and closed at shutdown.
type Bus interface {
	Publisher
	Subscriber
	Streamer
	// Listeners reports how many streams are currently open on topic.
	Listeners(topic string) int
}
