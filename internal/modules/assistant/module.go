package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/module"
	"github.com/nfrund/storefront/internal/modules/assistant/topics"
	"github.com/nfrund/storefront/internal/registry"
)

// Service keys published by the assistant module.
const (
	ServiceKey   registry.Key[*Service]   = "assistant.service"
	ResponderKey registry.Key[*Responder] = "assistant.responder"
)

// AssistantModule serves the shopping assistant chat.
type AssistantModule struct {
	module.BaseModule
	replies Replies
	watcher *ReplyWatcher
}

// New creates the assistant module. With nil replies the module uses
// REPLIES_FILE when configured and the built-in table otherwise.
func New(replies Replies) *AssistantModule {
	return &AssistantModule{replies: replies}
}

// Name returns the unique name for the module.
func (m *AssistantModule) Name() string {
	return "assistant"
}

// Register builds the responder and subscription service.
func (m *AssistantModule) Register(reg *registry.Registry) error {
	if err := topics.Register(registry.MustGet(reg, registry.TopicsKey)); err != nil {
		return fmt.Errorf("register assistant topics: %w", err)
	}

	cfg := reg.Config()
	bus := registry.MustGet(reg, registry.BusKey)
	logger := registry.Logger(reg)

	if m.replies == nil && cfg.RepliesFile != "" {
		watcher, err := WatchReplies(cfg.RepliesFile, logger)
		if err != nil {
			return fmt.Errorf("load assistant replies: %w", err)
		}
		m.watcher = watcher
		m.replies = watcher
	}

	registry.Set(reg, ServiceKey, NewService(bus, logger))
	registry.Set(reg, ResponderKey, NewResponder(
		bus,
		registry.MustGet(reg, registry.SchedulerKey),
		m.replies,
		ResponderConfig{ThinkingDelay: cfg.ChatThinkingDelay, TokenInterval: cfg.ChatTokenInterval},
		logger,
	))
	return nil
}

// Boot registers the HTTP routes.
func (m *AssistantModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	handler := NewHandler(registry.MustGet(reg, ServiceKey), registry.MustGet(reg, ResponderKey))

	chat := g.Group("/chat")
	chat.POST("/messages", handler.SendMessage, middleware.RateLimiter(reg.Config().ChatRateLimit))
	chat.GET("/stream", handler.ChatStream)
	chat.GET("/ws", handler.ChatSocket)

	slog.Info("Assistant routes registered")
	return nil
}

// Shutdown stops the reply file watcher, if any.
func (m *AssistantModule) Shutdown(ctx context.Context) error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}
