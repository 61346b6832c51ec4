package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nfrund/storefront/internal/domain"
)

//go:embed seeddata/products.yaml
var defaultSeed []byte

// LoadSeed reads sample products from path on fs. An empty path returns the
// built-in catalogue. JSON files parse as well, being valid YAML.
func LoadSeed(fs afero.Fs, path string) ([]domain.NewProduct, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", path, err)
		}
	}

	var products []domain.NewProduct
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return products, nil
}

// Seed inserts products when the repository is empty. It returns how many
// products were inserted.
func Seed(ctx context.Context, repo domain.ProductRepository, products []domain.NewProduct) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		slog.Debug("Product store already populated, skipping seed", "count", count)
		return 0, nil
	}

	for i, p := range products {
		if _, err := repo.Create(ctx, p); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	slog.Info("Seeded product store", "count", len(products))
	return len(products), nil
}
