package domain

import (
	"context"
	"time"
)

// Product is a catalogue entry as persisted by the product store.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Stock       int64     `json:"stock"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProduct holds the fields accepted when creating a product.
type NewProduct struct {
	Name        string  `json:"name" yaml:"name" validate:"required"`
	Description string  `json:"description" yaml:"description" validate:"required"`
	Price       float64 `json:"price" yaml:"price" validate:"gte=0"`
	Image       string  `json:"image" yaml:"image" validate:"required"`
	Category    string  `json:"category" yaml:"category" validate:"required"`
	Stock       int64   `json:"stock" yaml:"stock" validate:"gte=0"`
	// IsAvailable defaults to true when omitted.
	IsAvailable *bool `json:"isAvailable,omitempty" yaml:"isAvailable,omitempty"`
}

// ProductPatch is a partial update. Nil fields are left untouched; every
// applied patch also bumps UpdatedAt.
type ProductPatch struct {
	Price       *float64
	IsAvailable *bool
}

// ProductRepository defines the contract for product storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	// GetByID returns ErrNotFound when no product has the given id.
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p NewProduct) (*Product, error)
	// Update returns ErrNotFound when no product has the given id.
	Update(ctx context.Context, id int64, patch ProductPatch) error
	// UpdateAll applies the patch to every product.
	UpdateAll(ctx context.Context, patch ProductPatch) error
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}
