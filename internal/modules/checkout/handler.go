package checkout

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/storefront/internal/handlers"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a checkout handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type summaryRequest struct {
	Items []OrderItem `json:"items" validate:"dive"`
}

// CalculateSummary handles POST /checkout/summary.
func (h *Handler) CalculateSummary(c echo.Context) error {
	var req summaryRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusOK, h.service.CalculateSummary(req.Items))
}

// SubmitOrder handles POST /checkout/orders.
func (h *Handler) SubmitOrder(c echo.Context) error {
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return handlers.Error(err)
	}
	conf, err := h.service.SubmitOrder(c.Request().Context(), req)
	if err != nil {
		return handlers.Error(err)
	}
	return c.JSON(http.StatusCreated, conf)
}
