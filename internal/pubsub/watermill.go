package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillBridge implements Bus using watermill's in-memory GoChannel.
//
// The GoChannel is configured to block each Publish until every subscriber
// has acknowledged the message. Together with GoChannel's per-topic publish
// lock this serialises a topic, so every listener observes publish order.
// Subscribers ack as soon as they receive and hand off to a buffered stream,
// so a publisher only waits for the hand-off, never for a consumer.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger *slog.Logger

	streamBuffer int

	mu        sync.Mutex
	listeners map[string]int
}

const (
	// Metadata keys used to transfer our Message structure fields through watermill's message.
	metaKeyKey   = "key"
	metaKeyTopic = "topic"

	defaultStreamBuffer = 64
)

// Option configures a WatermillBridge.
type Option func(*WatermillBridge)

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(wb *WatermillBridge) {
		wb.logger = logger
	}
}

// WithStreamBuffer sets the capacity of channels returned by Stream. It is
// also how far a listener may fall behind before it is dropped.
func WithStreamBuffer(n int) Option {
	return func(wb *WatermillBridge) {
		if n > 0 {
			wb.streamBuffer = n
		}
	}
}

// NewWatermillBridge initializes the in-memory Pub/Sub system.
func NewWatermillBridge(opts ...Option) *WatermillBridge {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			// Persistent stays false: the bus holds no backlog to replay.
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NewStdLogger(false, false),
	)

	wb := &WatermillBridge{
		pub:          goChannel,
		sub:          goChannel,
		logger:       slog.Default(),
		streamBuffer: defaultStreamBuffer,
		listeners:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(wb)
	}
	wb.logger = wb.logger.With("component", "bus")
	return wb
}

// mapToWatermillMessage converts our pubsub.Message to a watermill message.
func mapToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)

	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	// Reserved keys win over caller metadata.
	wmMsg.Metadata.Set(metaKeyKey, msg.Key)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to our internal pubsub.Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	metadata := make(map[string]string, len(wmMsg.Metadata))
	for k, v := range wmMsg.Metadata {
		if k != metaKeyKey && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:    wmMsg.Metadata.Get(metaKeyTopic),
		Key:      wmMsg.Metadata.Get(metaKeyKey),
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return fmt.Errorf("publish: topic is required")
	}
	wmMsg := mapToWatermillMessage(msg)
	wmMsg.SetContext(ctx)
	// We use the message's internal topic (msg.Topic) as the watermill topic.
	if err := wb.pub.Publish(msg.Topic, wmMsg); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.Topic, err)
	}
	return nil
}

// Stream implements the Streamer interface.
//
// Delivery never waits on the consumer. A listener whose buffer is full when
// a message arrives is dropped: its channel is closed after the buffered
// messages and the listener released, while publishers and every other
// listener carry on.
func (wb *WatermillBridge) Stream(ctx context.Context, topic string) (<-chan Message, error) {
	ctx, cancel := context.WithCancel(ctx)

	// GoChannel registers the subscriber before returning, so anything
	// published after this call is observed.
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	wb.acquire(topic)
	out := make(chan Message, wb.streamBuffer)

	go func() {
		defer func() {
			cancel()
			close(out)
			wb.release(topic)
			wb.logger.Debug("Stream closed", "topic", topic)
		}()

		// GoChannel closes messages once ctx is canceled and drops the
		// subscriber from its topic. Canceling also releases a publisher
		// still waiting on this subscriber.
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)

			// Ack right away. Never Nack: GoChannel redelivers nacked messages.
			// Order is kept because this loop forwards one message at a time.
			wmMsg.Ack()

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			default:
				wb.logger.Warn("Listener too slow, closing its stream",
					"topic", topic, "key", msg.Key, "buffer", cap(out))
				return
			}
		}
	}()

	return out, nil
}

// Subscribe implements the Subscriber interface.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.Stream(ctx, topic)
	if err != nil {
		return err
	}

	// Run the message processing in a separate goroutine so that Subscribe is non-blocking.
	go func() {
		for msg := range messages {
			if err := handler(ctx, msg); err != nil {
				// A failing handler only affects its own message; the in-memory bus does not retry.
				wb.logger.Error("Failed to handle message", "topic", topic, "key", msg.Key, "error", err)
			}
		}
		wb.logger.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Listeners implements the Bus interface.
func (wb *WatermillBridge) Listeners(topic string) int {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.listeners[topic]
}

func (wb *WatermillBridge) acquire(topic string) {
	wb.mu.Lock()
	wb.listeners[topic]++
	wb.mu.Unlock()
}

func (wb *WatermillBridge) release(topic string) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.listeners[topic]--
	if wb.listeners[topic] <= 0 {
		delete(wb.listeners, topic)
	}
}

// Close implements the Publisher and Subscriber interface to shut down the bridge.
func (wb *WatermillBridge) Close() error {
	// Closing the subscriber will close the gochannel and end every open stream.
	return wb.sub.Close()
}

var _ Bus = (*WatermillBridge)(nil)
