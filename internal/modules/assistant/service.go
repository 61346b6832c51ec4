package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/modules/assistant/topics"
	"github.com/nfrund/storefront/internal/pubsub"
)

// Subscription is one client's live interest in a chat session.
type Subscription struct {
	ID        string
	SessionID string
}

// Service opens chat reply subscriptions.
type Service struct {
	streamer pubsub.Streamer
	logger   *slog.Logger
}

// NewService creates an assistant service.
func NewService(streamer pubsub.Streamer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{streamer: streamer, logger: logger.With("component", "assistant")}
}

// OpenChatUpdates streams reply chunks for sessionID until ctx is canceled.
// Nothing published before the call is replayed.
func (s *Service) OpenChatUpdates(ctx context.Context, sessionID string) (<-chan domain.ChatChunkEvent, error) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	sub := Subscription{ID: uuid.NewString(), SessionID: sessionID}

	chunks, err := pubsub.Stream(ctx, s.streamer, topics.ChatChunk, func(key string) bool {
		return key == sub.SessionID
	})
	if err != nil {
		return nil, fmt.Errorf("open chat updates: %w", err)
	}
	s.logger.Debug("Chat subscription opened", "subscription", sub.ID, "sessionId", sub.SessionID)
	return chunks, nil
}
