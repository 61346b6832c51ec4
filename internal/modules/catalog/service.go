package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/middleware"
	"github.com/nfrund/storefront/internal/modules/catalog/topics"
	"github.com/nfrund/storefront/internal/pubsub"
)

// relatedLimit caps the number of related products returned.
const relatedLimit = 4

// Service serves product reads and product update subscriptions.
type Service struct {
	repo     domain.ProductRepository
	streamer pubsub.Streamer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a catalog service.
func NewService(repo domain.ProductRepository, streamer pubsub.Streamer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		streamer: streamer,
		validate: middleware.NewValidate(),
		logger:   logger.With("component", "catalog"),
	}
}

// List returns every product.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// GetByID returns a product or domain.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Related returns up to four other products from the same category.
func (s *Service) Related(ctx context.Context, id int64) ([]domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	related := make([]domain.Product, 0, relatedLimit)
	for _, p := range all {
		if p.ID == product.ID || p.Category != product.Category {
			continue
		}
		related = append(related, p)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, np domain.NewProduct) (*domain.Product, error) {
	if err := s.validate.Struct(np); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}
	p, err := s.repo.Create(ctx, np)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMutationFailed, err)
	}
	s.logger.Info("Product created", "productId", p.ID, "name", p.Name)
	return p, nil
}

// Subscription is one client's live interest in product changes.
type Subscription struct {
	ID        string
	ProductID *int64
	// Cursor is the last event id the client reported having seen.
	Cursor string
}

// OpenProductUpdates streams product changes until ctx is canceled. A nil
// productID yields every change; otherwise only changes to that product.
//
// lastEventID is the resumption token presented by a reconnecting client. The
// bus keeps no backlog, so it is recorded on the subscription but nothing
// missed while disconnected is replayed.
func (s *Service) OpenProductUpdates(ctx context.Context, productID *int64, lastEventID string) (<-chan domain.TrackedProductChange, error) {
	sub := Subscription{ID: uuid.NewString(), ProductID: productID, Cursor: lastEventID}

	var keep func(string) bool
	if productID != nil {
		want := strconv.FormatInt(*productID, 10)
		keep = func(key string) bool { return key == want }
	}

	events, err := pubsub.Stream(ctx, s.streamer, topics.ProductChanged, keep)
	if err != nil {
		return nil, fmt.Errorf("open product updates: %w", err)
	}

	logger := s.logger.With("subscription", sub.ID)
	if productID != nil {
		logger = logger.With("productId", *productID)
	}
	logger.Debug("Product subscription opened", "cursor", sub.Cursor)

	out := make(chan domain.TrackedProductChange)
	go func() {
		defer close(out)
		defer logger.Debug("Product subscription closed")

		for event := range events {
			// The stream applies the key filter; this guards against a
			// mismatched key on a hand-published message.
			if productID != nil && event.ProductID != *productID {
				continue
			}
			select {
			case out <- domain.Track(event):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
