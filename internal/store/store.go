// Package store provides the catalog storage backends.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"pricing-service/internal/models"
)

// Catalog is the storage contract the pricing engine mutates through.
// Implementations must serialize mutations; validation and bulk logic
// never touch a backend directly.
type Catalog interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// MemoryCatalog is a thread-safe in-memory Catalog.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int64]models.Product
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{products: make(map[int64]models.Product)}
}

// Get retrieves a product by ID.
func (c *MemoryCatalog) Get(ctx context.Context, id int64) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

// GetBySKU retrieves a product by SKU/barcode.
func (c *MemoryCatalog) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.SKU != "" && p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, models.ErrProductNotFound
}

// List returns all products ordered by ID.
func (c *MemoryCatalog) List(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Insert stores a new product, assigning the next free ID (max
// existing ID + 1, or 1 for an empty catalog) when none is set.
func (c *MemoryCatalog) Insert(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == 0 {
		var max int64
		for id := range c.products {
			if id > max {
				max = id
			}
		}
		p.ID = max + 1
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	c.products[p.ID] = *p
	return nil
}

// Update replaces an existing product record.
func (c *MemoryCatalog) Update(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[p.ID]; !ok {
		return models.ErrProductNotFound
	}
	p.UpdatedAt = time.Now()
	c.products[p.ID] = *p
	return nil
}

// Delete removes a product entirely; no tombstone is kept.
func (c *MemoryCatalog) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(c.products, id)
	return nil
}
