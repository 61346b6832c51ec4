package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/nfrund/storefront/internal/topicmgr"
)

// Event[T] wraps a topic name and provides type-safe publishing and streaming.
type Event[T any] struct {
	topic topicmgr.Topic
}

// NewEvent creates a typed event for a module topic.
// It uses reflection to document the payload fields of T in the topic metadata.
func NewEvent[T any](config topicmgr.TopicConfig) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]string, 0)
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			jsonTag := t.Field(i).Tag.Get("json")
			if jsonTag == "" || jsonTag == "-" {
				continue
			}
			// Keep just the name part of the tag (ignore omitempty, etc.)
			name, _, _ := strings.Cut(jsonTag, ",")
			fields = append(fields, name)
		}
	}

	if config.Metadata == nil {
		config.Metadata = make(map[string]interface{})
	}
	config.Metadata["payload_fields"] = fields
	config.Metadata["type_name"] = t.Name()

	return Event[T]{topic: topicmgr.DefineModule(config)}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topic.Name()
}

// Topic returns the topic definition for registration with a topicmgr.Manager.
func (e Event[T]) Topic() topicmgr.Topic {
	return e.topic
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], key string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Key:     key,
		Payload: data,
	})
}

// Stream opens a typed stream on event. Only messages whose key passes keep
// are decoded and delivered; a nil keep delivers everything.
//
// A payload that fails to decode ends this stream only: the returned channel
// is closed and the underlying listener released. The bus and every other
// listener are unaffected.
func Stream[T any](ctx context.Context, s Streamer, event Event[T], keep func(key string) bool) (<-chan T, error) {
	ctx, cancel := context.WithCancel(ctx)
	raw, err := s.Stream(ctx, event.Name())
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		defer cancel()

		for msg := range raw {
			if keep != nil && !keep(msg.Key) {
				continue
			}

			var payload T
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				slog.Error("Failed to decode event, closing stream", "topic", event.Name(), "key", msg.Key, "error", err)
				return
			}

			select {
			case out <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
