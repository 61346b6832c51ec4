package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/modules/assistant/topics"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/simulate"
)

// DefaultSession is used when a request names no session.
const DefaultSession = "default"

// SendRequest is an inbound chat message.
type SendRequest struct {
	Message   string `json:"message" validate:"required,max=500"`
	SessionID string `json:"sessionId" validate:"max=128"`
}

// Acknowledgement is returned as soon as a message is accepted. The reply
// streams separately under ReplyID.
type Acknowledgement struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId"`
	ReplyID   string    `json:"replyId"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponderConfig tunes the simulated generation timings.
type ResponderConfig struct {
	ThinkingDelay time.Duration
	TokenInterval time.Duration
}

// Responder simulates a token-streaming assistant.
type Responder struct {
	publisher pubsub.Publisher
	scheduler *simulate.Scheduler
	replies   Replies
	validate  *validator.Validate
	cfg       ResponderConfig
	logger    *slog.Logger
}

// NewResponder creates a Responder. A nil replies uses the built-in table.
func NewResponder(publisher pubsub.Publisher, scheduler *simulate.Scheduler, replies Replies, cfg ResponderConfig, logger *slog.Logger) *Responder {
	if replies == nil {
		replies = DefaultReplies()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		publisher: publisher,
		scheduler: scheduler,
		replies:   replies,
		validate:  middleware.NewValidate(),
		cfg:       cfg,
		logger:    logger.With("component", "responder"),
	}
}

// Respond accepts a message and schedules its reply. After the thinking
// delay, token n of the reply is published at (n+1) token intervals, each
// event holding the reply so far.
func (r *Responder) Respond(ctx context.Context, req SendRequest) (Acknowledgement, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := r.validate.Struct(req); err != nil {
		return Acknowledgement{}, fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}
	if req.SessionID == "" {
		req.SessionID = DefaultSession
	}

	ack := Acknowledgement{
		Success:   true,
		MessageID: "user-" + uuid.NewString(),
		ReplyID:   "ai-" + uuid.NewString(),
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC(),
	}

	tokens := strings.Fields(r.replies.Lookup(req.Message))
	logger := r.logger.With("sessionId", ack.SessionID, "messageId", ack.ReplyID)
	logger.Debug("Reply scheduled", "tokens", len(tokens))

	start := time.Now().Add(r.cfg.ThinkingDelay)
	r.scheduler.After(r.cfg.ThinkingDelay, func(ctx context.Context) {
		r.stream(ctx, logger, ack, tokens, start)
	})
	return ack, nil
}

// stream publishes token n at start + (n+1) intervals. Deadlines are fixed up
// front, so a slow publish does not push back the tokens after it.
func (r *Responder) stream(ctx context.Context, logger *slog.Logger, ack Acknowledgement, tokens []string, start time.Time) {
	for n := range tokens {
		deadline := start.Add(time.Duration(n+1) * r.cfg.TokenInterval)
		if !simulate.SleepUntil(ctx, deadline) {
			logger.Debug("Reply stream canceled", "sent", n)
			return
		}
		chunk := domain.ChatChunkEvent{
			SessionID:  ack.SessionID,
			MessageID:  ack.ReplyID,
			Chunk:      strings.Join(tokens[:n+1], " "),
			IsComplete: n == len(tokens)-1,
		}
		if err := pubsub.Publish(ctx, r.publisher, topics.ChatChunk, ack.SessionID, chunk); err != nil {
			logger.Error("Failed to publish chat chunk", "error", err)
			return
		}
	}
	logger.Debug("Reply stream complete")
}
