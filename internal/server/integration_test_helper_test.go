package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/storefront/internal/config"
	"github.com/nfrund/storefront/internal/database"
	"github.com/nfrund/storefront/internal/server"
	"github.com/nfrund/storefront/internal/simulate"
)

// setupIntegrationTest starts a full server over an in-memory SQLite store
// seeded with the sample catalogue. Simulated delays are shortened.
func setupIntegrationTest(t *testing.T, random ...float64) (*server.Server, *httptest.Server) {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		DBDriver:            config.DriverSQLite,
		SQLitePath:          ":memory:",
		ChangeDelay:         20 * time.Millisecond,
		TriggerCooldown:     10 * time.Second,
		ChatThinkingDelay:   10 * time.Millisecond,
		ChatTokenInterval:   time.Millisecond,
		CheckoutFailureRate: 0.2,
		ChatRateLimit:       100,
	}

	repo, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	products, err := database.LoadSeed(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	_, err = database.Seed(ctx, repo, products)
	require.NoError(t, err)

	if len(random) == 0 {
		random = []float64{0.5}
	}
	s, err := server.New(ctx, cfg, repo, server.WithRandom(simulate.NewSequence(random...)))
	require.NoError(t, err)

	ts := httptest.NewServer(s.E)
	t.Cleanup(func() {
		ts.CloseClientConnections()
		ts.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	})
	return s, ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// sseClient reads "data:" payloads (and their ids) from an event stream.
type sseClient struct {
	events chan sseEvent
}

type sseEvent struct {
	ID   string
	Data string
}

func openSSE(t *testing.T, url string, header http.Header) *sseClient {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	c := &sseClient{events: make(chan sseEvent, 256)}
	go func() {
		defer resp.Body.Close()
		defer close(c.events)
		scanner := bufio.NewScanner(resp.Body)
		var current sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "id: "):
				current.ID = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "data: "):
				current.Data = strings.TrimPrefix(line, "data: ")
			case line == "" && current.Data != "":
				c.events <- current
				current = sseEvent{}
			}
		}
	}()
	return c
}

func (c *sseClient) next(t *testing.T, v any) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-c.events:
		require.True(t, ok, "event stream closed")
		require.NoError(t, json.Unmarshal([]byte(ev.Data), v))
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for server-sent event")
		return sseEvent{}
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
