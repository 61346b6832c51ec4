package assistant

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/handlers"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/stream"
)

// Handler exposes the assistant over HTTP, SSE and WebSocket.
type Handler struct {
	service   *Service
	responder *Responder
	heartbeat time.Duration
}

// NewHandler creates an assistant handler.
func NewHandler(service *Service, responder *Responder) *Handler {
	return &Handler{service: service, responder: responder, heartbeat: 15 * time.Second}
}

// SendMessage handles POST /chat/messages.
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return handlers.Error(err)
	}
	ack, err := h.responder.Respond(c.Request().Context(), req)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusAccepted, ack)
}

// ChatStream handles GET /chat/stream?sessionId= as Server-Sent Events.
func (h *Handler) ChatStream(c echo.Context) error {
	ctx := c.Request().Context()
	chunks, err := h.service.OpenChatUpdates(ctx, c.QueryParam("sessionId"))
	if err != nil {
		return handlers.Error(err)
	}

	sse := stream.Start(c)
	if err := stream.Pump(sse, ctx.Done(), chunks, h.heartbeat, nil); err != nil {
		middleware.FromContext(ctx).Debug("Chat stream ended", "error", err)
	}
	return nil
}

// wsError is written to the socket when an inbound message is rejected.
type wsError struct {
	Error string `json:"error"`
}

// ChatSocket handles GET /chat/ws?sessionId=. The socket carries reply
// chunks for the session and also accepts SendRequest frames.
func (h *Handler) ChatSocket(c echo.Context) error {
	logger := middleware.FromContext(c.Request().Context())
	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		sessionID = DefaultSession
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // Allow all origins for development
	})
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return nil
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	chunks, err := h.service.OpenChatUpdates(ctx, sessionID)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return nil
	}

	// The read loop owns the connection's lifetime: when the client goes
	// away it cancels ctx, which closes the subscription.
	go func() {
		defer cancel()
		for {
			var req SendRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
					logger.Debug("WebSocket read failed", "error", err)
				}
				return
			}
			req.SessionID = sessionID
			if _, err := h.responder.Respond(ctx, req); err != nil {
				msg := "message rejected"
				if errors.Is(err, domain.ErrValidationFailed) {
					msg = err.Error()
				}
				if err := wsjson.Write(ctx, conn, wsError{Error: msg}); err != nil {
					return
				}
			}
		}
	}()

	for chunk := range chunks {
		if err := wsjson.Write(ctx, conn, chunk); err != nil {
			logger.Debug("WebSocket write failed", "error", err)
			return nil
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	return nil
}
