package catalog

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/handlers"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/stream"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service   *Service
	mutator   *Mutator
	heartbeat time.Duration
}

// NewHandler creates a catalog handler.
func NewHandler(service *Service, mutator *Mutator) *Handler {
	return &Handler{service: service, mutator: mutator, heartbeat: 15 * time.Second}
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.service.List(c.Request().Context())
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id.
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	product, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, product)
}

// RelatedProducts handles GET /products/:id/related.
func (h *Handler) RelatedProducts(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	related, err := h.service.Related(c.Request().Context(), id)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, related)
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(c echo.Context) error {
	var req domain.NewProduct
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return handlers.Error(err)
	}
	product, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusCreated, product)
}

// ProductUpdates handles GET /products/updates as a Server-Sent Events
// stream. Each event's id is its resumption token.
func (h *Handler) ProductUpdates(c echo.Context) error {
	productID, err := handlers.OptionalID(c, "productId")
	if err != nil {
		return handlers.Error(err)
	}

	ctx := c.Request().Context()
	updates, err := h.service.OpenProductUpdates(ctx, productID, stream.LastEventID(c))
	if err != nil {
		return handlers.Error(err)
	}

	sse := stream.Start(c)
	err = stream.Pump(sse, ctx.Done(), updates, h.heartbeat, func(ev domain.TrackedProductChange) string {
		return ev.ID
	})
	if err != nil {
		middleware.FromContext(ctx).Debug("Product update stream ended", "error", err)
	}
	return nil
}

// TriggerPriceChange handles POST /dev/products/:id/price-change.
func (h *Handler) TriggerPriceChange(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	result, err := h.mutator.TriggerPriceChange(c.Request().Context(), id)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusAccepted, result)
}

// ToggleAvailability handles POST /dev/products/:id/toggle-availability.
func (h *Handler) ToggleAvailability(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	available, err := h.mutator.ToggleAvailability(c.Request().Context(), id)
	if err != nil {
		return handlers.Error(err)
	}
	message := "Product is now unavailable"
	if available {
		message = "Product is now available"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"message":     message,
		"isAvailable": available,
	})
}

// TriggerProductChange handles POST /dev/products/:id/trigger-change. A
// cooldown rejection is reported as success=false with status 200.
func (h *Handler) TriggerProductChange(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	var opts TriggerOptions
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&opts); err != nil {
			return handlers.Error(err)
		}
	}
	result, err := h.mutator.TriggerProductChange(c.Request().Context(), id, opts)
	if err != nil {
		return handlers.Error(err)
	}
	status := http.StatusOK
	if result.Triggered {
		status = http.StatusAccepted
	}
	return c.JSON(status, result)
}

// MakeProductAvailable handles POST /dev/products/:id/make-available.
func (h *Handler) MakeProductAvailable(c echo.Context) error {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		return handlers.Error(err)
	}
	if err := h.mutator.MakeProductAvailable(c.Request().Context(), id); err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, handlers.MessageResponse{Success: true, Message: "Product is now available"})
}

// MakeAllAvailable handles POST /dev/products/make-available.
func (h *Handler) MakeAllAvailable(c echo.Context) error {
	if err := h.mutator.MakeAllAvailable(c.Request().Context()); err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, handlers.MessageResponse{Success: true, Message: "All products are now available"})
}
