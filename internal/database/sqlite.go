package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nfrund/storefront/internal/domain"
)

const productSchema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	price REAL NOT NULL,
	image TEXT NOT NULL,
	category TEXT NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0,
	is_available INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
`

const productColumns = `id, name, description, price, image, category, stock, is_available, created_at, updated_at`

// SQLiteProductStore persists products in a SQLite database.
type SQLiteProductStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteProductStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writes and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, productSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteProductStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                domain.Product
		available        int64
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.Stock, &available, &created, &updated); err != nil {
		return nil, err
	}
	p.IsAvailable = available != 0
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("product %d created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("product %d updated_at: %w", p.ID, err)
	}
	return &p, nil
}

// List returns every product ordered by id.
func (s *SQLiteProductStore) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetByID returns the product with id or domain.ErrNotFound.
func (s *SQLiteProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Create inserts a product and returns it with its generated id.
func (s *SQLiteProductStore) Create(ctx context.Context, np domain.NewProduct) (*domain.Product, error) {
	available := true
	if np.IsAvailable != nil {
		available = *np.IsAvailable
	}
	now := s.now().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, description, price, image, category, stock, is_available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		np.Name, np.Description, np.Price, np.Image, np.Category, np.Stock, boolToInt(available), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Update applies patch to a single product.
func (s *SQLiteProductStore) Update(ctx context.Context, id int64, patch domain.ProductPatch) error {
	set, args := patchClause(patch, s.now())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE products SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateAll applies patch to every product.
func (s *SQLiteProductStore) UpdateAll(ctx context.Context, patch domain.ProductPatch) error {
	set, args := patchClause(patch, s.now())
	if _, err := s.db.ExecContext(ctx, `UPDATE products SET `+set, args...); err != nil {
		return fmt.Errorf("update products: %w", err)
	}
	return nil
}

// Count returns the number of stored products.
func (s *SQLiteProductStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteProductStore) Close(context.Context) error {
	return s.db.Close()
}

func patchClause(patch domain.ProductPatch, now time.Time) (string, []any) {
	var (
		cols []string
		args []any
	)
	if patch.Price != nil {
		cols = append(cols, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.IsAvailable != nil {
		cols = append(cols, "is_available = ?")
		args = append(args, boolToInt(*patch.IsAvailable))
	}
	cols = append(cols, "updated_at = ?")
	args = append(args, now.Format(time.RFC3339Nano))
	return strings.Join(cols, ", "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ domain.ProductRepository = (*SQLiteProductStore)(nil)
