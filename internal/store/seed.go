package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pricing-service/internal/models"
)

// LoadSeed populates the catalog from a JSON file containing an array
// of products. Used to bootstrap the in-memory backend at startup.
func LoadSeed(ctx context.Context, catalog Catalog, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range products {
		if err := catalog.Insert(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("failed to seed product %q: %w", products[i].Name, err)
		}
	}
	return len(products), nil
}
