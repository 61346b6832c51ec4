package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/storefront/internal/domain"
)

// surrealProduct mirrors a product row; the record id is projected to its
// numeric part with meta::id.
type surrealProduct struct {
	ID          int64                         `json:"id"`
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Price       float64                       `json:"price"`
	Image       string                        `json:"image"`
	Category    string                        `json:"category"`
	Stock       int64                         `json:"stock"`
	IsAvailable bool                          `json:"is_available"`
	CreatedAt   *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt   *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

func (p surrealProduct) toDomain() domain.Product {
	out := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		IsAvailable: p.IsAvailable,
	}
	if p.CreatedAt != nil {
		out.CreatedAt = p.CreatedAt.Time
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = p.UpdatedAt.Time
	}
	return out
}

const surrealProjection = `meta::id(id) AS id, name, description, price, image, category, stock, is_available, created_at, updated_at`

// SurrealProductStore persists products as `product:<id>` records.
type SurrealProductStore struct {
	db *surrealdb.DB
}

// NewSurrealProductStore wraps an established connection.
func NewSurrealProductStore(db *surrealdb.DB) *SurrealProductStore {
	return &SurrealProductStore{db: db}
}

func (s *SurrealProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := Query[surrealProduct](ctx, s.db, "SELECT "+surrealProjection+" FROM product ORDER BY id", nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

func (s *SurrealProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row, err := QueryOne[surrealProduct](ctx, s.db,
		"SELECT "+surrealProjection+" FROM type::thing('product', $id)", map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	p := row.toDomain()
	return &p, nil
}

func (s *SurrealProductStore) Create(ctx context.Context, np domain.NewProduct) (*domain.Product, error) {
	next, err := QueryOne[struct {
		Value int64 `json:"value"`
	}](ctx, s.db, "UPSERT counter:product SET value += 1", nil)
	if err != nil {
		return nil, fmt.Errorf("allocate product id: %w", err)
	}
	if next == nil {
		return nil, fmt.Errorf("allocate product id: empty counter result")
	}

	available := true
	if np.IsAvailable != nil {
		available = *np.IsAvailable
	}
	query := `CREATE type::thing('product', $id) SET
		name = $name, description = $description, price = $price, image = $image,
		category = $category, stock = $stock, is_available = $available,
		created_at = time::now(), updated_at = time::now()`
	params := map[string]any{
		"id":          next.Value,
		"name":        np.Name,
		"description": np.Description,
		"price":       np.Price,
		"image":       np.Image,
		"category":    np.Category,
		"stock":       np.Stock,
		"available":   available,
	}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetByID(ctx, next.Value)
}

func (s *SurrealProductStore) Update(ctx context.Context, id int64, patch domain.ProductPatch) error {
	set, params := surrealPatch(patch)
	params["id"] = id

	ids, err := Query[int64](ctx, s.db,
		"UPDATE type::thing('product', $id) SET "+set+" RETURN VALUE meta::id(id)", params)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *SurrealProductStore) UpdateAll(ctx context.Context, patch domain.ProductPatch) error {
	set, params := surrealPatch(patch)
	if err := Execute(ctx, s.db, "UPDATE product SET "+set, params); err != nil {
		return fmt.Errorf("update products: %w", err)
	}
	return nil
}

func (s *SurrealProductStore) Count(ctx context.Context) (int, error) {
	row, err := QueryOne[struct {
		Count int `json:"count"`
	}](ctx, s.db, "SELECT count() FROM product GROUP ALL", nil)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}

func (s *SurrealProductStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func surrealPatch(patch domain.ProductPatch) (string, map[string]any) {
	params := map[string]any{}
	var set []string
	if patch.Price != nil {
		set = append(set, "price = $price")
		params["price"] = *patch.Price
	}
	if patch.IsAvailable != nil {
		set = append(set, "is_available = $available")
		params["available"] = *patch.IsAvailable
	}
	set = append(set, "updated_at = time::now()")
	return strings.Join(set, ", "), params
}

var _ domain.ProductRepository = (*SurrealProductStore)(nil)
