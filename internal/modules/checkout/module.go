package checkout

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/module"
	"github.com/nfrund/storefront/internal/registry"
)

// ServiceKey exposes the checkout service to other modules.
const ServiceKey registry.Key[*Service] = "checkout.service"

// CheckoutModule simulates order submission.
type CheckoutModule struct {
	module.BaseModule
}

// New creates the checkout module.
func New() *CheckoutModule {
	return &CheckoutModule{}
}

// Name returns the unique name for the module.
func (m *CheckoutModule) Name() string {
	return "checkout"
}

// Register builds the checkout service.
func (m *CheckoutModule) Register(reg *registry.Registry) error {
	cfg := reg.Config()
	registry.Set(reg, ServiceKey, NewService(
		registry.MustGet(reg, registry.RandomKey),
		Config{ProcessingDelay: cfg.CheckoutDelay, FailureRate: cfg.CheckoutFailureRate},
		registry.Logger(reg),
	))
	return nil
}

// Boot registers the HTTP routes.
func (m *CheckoutModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	handler := NewHandler(registry.MustGet(reg, ServiceKey))

	checkout := g.Group("/checkout")
	checkout.POST("/summary", handler.CalculateSummary)
	checkout.POST("/orders", handler.SubmitOrder)
	return nil
}
