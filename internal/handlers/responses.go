package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/middleware"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is returned by mutations that have nothing else to report.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var errorCodes = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidationFailed, http.StatusBadRequest, "validation_failed"},
	{domain.ErrSimulatedFailure, http.StatusServiceUnavailable, "simulated_failure"},
	{domain.ErrMutationFailed, http.StatusInternalServerError, "mutation_failed"},
}

// Error translates a domain error into an *echo.HTTPError carrying the
// original error as its internal cause.
func Error(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return echo.NewHTTPError(ec.status, ErrorResponse{Code: ec.code, Message: err.Error()}).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
		Code:    "internal",
		Message: http.StatusText(http.StatusInternalServerError),
	}).SetInternal(err)
}

// HTTPErrorHandler writes every error as an ErrorResponse and logs server
// failures with the request-scoped logger.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := Error(err).(*echo.HTTPError)
	if !ok {
		he = echo.NewHTTPError(http.StatusInternalServerError)
	}

	body, ok := he.Message.(ErrorResponse)
	if !ok {
		body = ErrorResponse{Code: codeFor(he.Code), Message: messageOf(he)}
	}

	if he.Code >= http.StatusInternalServerError {
		middleware.FromContext(c.Request().Context()).Error("Request failed", "status", he.Code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to write error response", "error", err)
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		if status >= http.StatusInternalServerError {
			return "internal"
		}
		return "error"
	}
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}
