package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/storefront/internal/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("product 9: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: empty", domain.ErrValidationFailed), http.StatusBadRequest, "validation_failed"},
		{"mutation", fmt.Errorf("%w: disk full", domain.ErrMutationFailed), http.StatusInternalServerError, "mutation_failed"},
		{"simulated", domain.ErrSimulatedFailure, http.StatusServiceUnavailable, "simulated_failure"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "rate_limited"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?productId=x", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("7")
	id, err := ParseID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	c.SetParamValues("abc")
	_, err = ParseID(c, "id")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = OptionalID(c, "productId")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	none, err := OptionalID(c, "other")
	require.NoError(t, err)
	assert.Nil(t, none)
}
