package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/module"
	"github.com/nfrund/storefront/internal/modules/catalog/topics"
	"github.com/nfrund/storefront/internal/registry"
)

// Service keys published by the catalog module.
const (
	ServiceKey registry.Key[*Service] = "catalog.service"
	MutatorKey registry.Key[*Mutator] = "catalog.mutator"
)

// CatalogModule serves products, dev mutation endpoints and product update streams.
type CatalogModule struct {
	module.BaseModule
}

// New creates the catalog module.
func New() *CatalogModule {
	return &CatalogModule{}
}

// Name returns the unique name for the module.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// Register builds the catalog service and mutator from the framework services.
func (m *CatalogModule) Register(reg *registry.Registry) error {
	if err := topics.Register(registry.MustGet(reg, registry.TopicsKey)); err != nil {
		return fmt.Errorf("register catalog topics: %w", err)
	}

	cfg := reg.Config()
	bus := registry.MustGet(reg, registry.BusKey)
	repo := registry.MustGet(reg, registry.ProductsKey)
	logger := registry.Logger(reg)

	registry.Set(reg, ServiceKey, NewService(repo, bus, logger))
	registry.Set(reg, MutatorKey, NewMutator(
		repo,
		bus,
		registry.MustGet(reg, registry.RandomKey),
		registry.MustGet(reg, registry.SchedulerKey),
		MutatorConfig{ChangeDelay: cfg.ChangeDelay, Cooldown: cfg.TriggerCooldown},
		logger,
	))
	return nil
}

// Boot registers the HTTP routes.
func (m *CatalogModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	handler := NewHandler(registry.MustGet(reg, ServiceKey), registry.MustGet(reg, MutatorKey))

	products := g.Group("/products")
	products.GET("", handler.ListProducts)
	// Registered before :id so the static segment wins.
	products.GET("/updates", handler.ProductUpdates)
	products.POST("", handler.CreateProduct)
	products.GET("/:id", handler.GetProduct)
	products.GET("/:id/related", handler.RelatedProducts)

	dev := g.Group("/dev/products")
	dev.POST("/make-available", handler.MakeAllAvailable)
	dev.POST("/:id/price-change", handler.TriggerPriceChange)
	dev.POST("/:id/toggle-availability", handler.ToggleAvailability)
	dev.POST("/:id/trigger-change", handler.TriggerProductChange)
	dev.POST("/:id/make-available", handler.MakeProductAvailable)

	slog.Info("Catalog routes registered")
	return nil
}
