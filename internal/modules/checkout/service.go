package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/simulate"
)

const (
	shippingFee   = 10.00
	taxRate       = 0.08
	deliveryDays  = 7
	maxOrderID    = 1_000_000
	orderAccepted = "Order processed successfully!"
)

// Customer holds the checkout form fields.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,min=10"`
}

// OrderItem is one cart line.
type OrderItem struct {
	ID       int64   `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

// Summary is the price breakdown of a cart.
type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// OrderRequest is a submitted order. The totals are the ones shown to the
// customer and are echoed back unchanged.
type OrderRequest struct {
	Customer Customer    `json:"customer" validate:"required"`
	Items    []OrderItem `json:"items" validate:"required,min=1,dive"`
	Summary
}

// OrderConfirmation is returned for an accepted order.
type OrderConfirmation struct {
	Success           bool        `json:"success"`
	OrderID           int64       `json:"orderId"`
	Message           string      `json:"message"`
	Customer          Customer    `json:"customer"`
	Items             []OrderItem `json:"items"`
	Total             float64     `json:"total"`
	EstimatedDelivery time.Time   `json:"estimatedDelivery"`
}

// Config tunes the simulated order processing.
type Config struct {
	ProcessingDelay time.Duration
	// FailureRate is the share of orders rejected with ErrSimulatedFailure.
	FailureRate float64
	// Now is the delivery estimate clock; nil uses time.Now.
	Now func() time.Time
}

// Service simulates order submission.
type Service struct {
	random   simulate.Random
	cfg      Config
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a checkout service.
func NewService(random simulate.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		random:   random,
		cfg:      cfg,
		validate: middleware.NewValidate(),
		logger:   logger.With("component", "checkout"),
	}
}

// CalculateSummary prices a cart: flat shipping plus 8% tax on the subtotal.
func (s *Service) CalculateSummary(items []OrderItem) Summary {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	tax := subtotal * taxRate
	return Summary{
		Subtotal: roundCents(subtotal),
		Shipping: shippingFee,
		Tax:      roundCents(tax),
		Total:    roundCents(subtotal + shippingFee + tax),
	}
}

// SubmitOrder waits out the simulated processing time and then accepts the
// order, or fails with domain.ErrSimulatedFailure for a FailureRate share of
// orders.
func (s *Service) SubmitOrder(ctx context.Context, req OrderRequest) (OrderConfirmation, error) {
	if err := s.validate.Struct(req); err != nil {
		return OrderConfirmation{}, fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}

	if !simulate.Sleep(ctx, s.cfg.ProcessingDelay) {
		return OrderConfirmation{}, ctx.Err()
	}

	if s.random.Float64() > 1-s.cfg.FailureRate {
		s.logger.Warn("Simulated order failure", "email", req.Customer.Email)
		return OrderConfirmation{}, domain.ErrSimulatedFailure
	}

	conf := OrderConfirmation{
		Success:           true,
		OrderID:           int64(math.Floor(s.random.Float64() * maxOrderID)),
		Message:           orderAccepted,
		Customer:          req.Customer,
		Items:             req.Items,
		Total:             req.Total,
		EstimatedDelivery: s.cfg.Now().UTC().AddDate(0, 0, deliveryDays),
	}
	s.logger.Info("Order accepted", "orderId", conf.OrderID, "items", len(req.Items), "total", req.Total)
	return conf, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
