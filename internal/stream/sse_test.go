package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct {
	N int `json:"n"`
}

func TestPump(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set(HeaderLastEventID, "7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.Equal(t, "7", LastEventID(c))

	ch := make(chan tick, 2)
	ch <- tick{N: 1}
	ch <- tick{N: 2}
	close(ch)

	sse := Start(c)
	err := Pump(sse, context.Background().Done(), ch, 0, func(v tick) string {
		if v.N == 1 {
			return "a"
		}
		return ""
	})
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "id: a\ndata: {\"n\":1}\n\ndata: {\"n\":2}\n\n", rec.Body.String())
}

func TestLastEventID_QueryFallback(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/events?lastEventId=3", nil), httptest.NewRecorder())
	assert.Equal(t, "3", LastEventID(c))
}
