package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/domain"
)

// ParseID reads a positive integer id from the named path parameter.
func ParseID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrValidationFailed, name, raw)
	}
	return id, nil
}

// OptionalID reads an optional positive integer id from a query parameter.
// An absent parameter yields nil.
func OptionalID(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid %s %q", domain.ErrValidationFailed, name, raw)
	}
	return &id, nil
}

// BindAndValidate binds the request body into v and runs echo's validator.
func BindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}
	if err := c.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}
	return nil
}
