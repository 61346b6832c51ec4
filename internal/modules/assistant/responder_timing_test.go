package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/simulate"
)

func TestRespond_TokenTiming(t *testing.T) {
	const (
		thinking = 50 * time.Millisecond
		interval = 20 * time.Millisecond
	)
	bus := pubsub.NewWatermillBridge()
	scheduler := simulate.NewScheduler()
	t.Cleanup(func() {
		_ = scheduler.Shutdown(context.Background())
		_ = bus.Close()
	})
	replies, err := ParseReplies([]byte("replies:\n  - prompt: hi\n    reply: one two three four\nfallback: 'you said %s'\n"))
	require.NoError(t, err)

	service := NewService(bus, nil)
	responder := NewResponder(bus, scheduler, replies, ResponderConfig{ThinkingDelay: thinking, TokenInterval: interval}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chunks, err := service.OpenChatUpdates(ctx, "timed")
	require.NoError(t, err)

	start := time.Now()
	_, err = responder.Respond(context.Background(), SendRequest{Message: "hi", SessionID: "timed"})
	require.NoError(t, err)

	// Nothing is published while the assistant is thinking.
	select {
	case chunk := <-chunks:
		t.Fatalf("chunk %q arrived during the thinking delay", chunk.Chunk)
	case <-time.After(thinking):
	}

	tokens := strings.Fields("one two three four")
	for n := range tokens {
		select {
		case chunk := <-chunks:
			earliest := thinking + time.Duration(n+1)*interval
			assert.GreaterOrEqual(t, time.Since(start), earliest, "token %d arrived early", n)
			assert.Equal(t, strings.Join(tokens[:n+1], " "), chunk.Chunk)
			assert.Equal(t, n == len(tokens)-1, chunk.IsComplete)
		case <-time.After(2 * time.Second):
			t.Fatalf("token %d never arrived", n)
		}
	}
}
