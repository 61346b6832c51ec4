// Package stream writes Server-Sent Events over an echo response.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// HeaderLastEventID is sent by reconnecting EventSource clients.
const HeaderLastEventID = "Last-Event-ID"

// SSE writes events to a single client.
type SSE struct {
	res *echo.Response
}

// Start writes the event-stream headers and flushes them so the client sees
// the subscription as open.
func Start(c echo.Context) *SSE {
	res := c.Response()
	h := res.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()
	return &SSE{res: res}
}

// LastEventID returns the resumption token presented by the client, from the
// header or a lastEventId query parameter.
func LastEventID(c echo.Context) string {
	if id := c.Request().Header.Get(HeaderLastEventID); id != "" {
		return id
	}
	return c.QueryParam("lastEventId")
}

// Send writes one event whose data is v encoded as JSON. An empty id or event
// omits that field.
func (s *SSE) Send(id, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, "id: %s\n", id)
	}
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	fmt.Fprintf(&b, "data: %s\n\n", data)

	if _, err := s.res.Write([]byte(b.String())); err != nil {
		return err
	}
	s.res.Flush()
	return nil
}

// Comment writes a comment line, used as a keep-alive.
func (s *SSE) Comment(text string) error {
	if _, err := fmt.Fprintf(s.res, ": %s\n\n", text); err != nil {
		return err
	}
	s.res.Flush()
	return nil
}

// Pump forwards values from ch until it closes or done fires, sending a
// keep-alive comment every heartbeat. idOf may be nil.
func Pump[T any](s *SSE, done <-chan struct{}, ch <-chan T, heartbeat time.Duration, idOf func(T) string) error {
	var tick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-done:
			return nil
		case <-tick:
			if err := s.Comment("keep-alive"); err != nil {
				return err
			}
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			id := ""
			if idOf != nil {
				id = idOf(v)
			}
			if err := s.Send(id, "", v); err != nil {
				return err
			}
		}
	}
}
