package store

import (
	"context"
	"testing"

	"pricing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalogInsertAssignsIDs(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	first := &models.Product{Name: "Widget", Price: 100}
	require.NoError(t, c.Insert(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	second := &models.Product{Name: "Gadget", Price: 200}
	require.NoError(t, c.Insert(ctx, second))
	assert.Equal(t, int64(2), second.ID)

	// explicit IDs are kept; the next assignment continues past them
	explicit := &models.Product{ID: 10, Name: "Gizmo", Price: 300}
	require.NoError(t, c.Insert(ctx, explicit))

	next := &models.Product{Name: "Doodad", Price: 400}
	require.NoError(t, c.Insert(ctx, next))
	assert.Equal(t, int64(11), next.ID)
}

func TestMemoryCatalogGet(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	p := &models.Product{Name: "Widget", SKU: "W-1", Price: 100}
	require.NoError(t, c.Insert(ctx, p))

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)

	_, err = c.Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	bySKU, err := c.GetBySKU(ctx, "W-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	_, err = c.GetBySKU(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestMemoryCatalogGetReturnsCopy(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	p := &models.Product{Name: "Widget", Price: 100}
	require.NoError(t, c.Insert(ctx, p))

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Price = 999

	again, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Price)
}

func TestMemoryCatalogUpdate(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	p := &models.Product{Name: "Widget", Price: 100}
	require.NoError(t, c.Insert(ctx, p))

	p.Price = 120
	require.NoError(t, c.Update(ctx, p))

	got, err := c.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Price)

	missing := &models.Product{ID: 999, Name: "Ghost", Price: 1}
	assert.ErrorIs(t, c.Update(ctx, missing), models.ErrProductNotFound)
}

func TestMemoryCatalogDelete(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	p := &models.Product{Name: "Widget", Price: 100}
	require.NoError(t, c.Insert(ctx, p))

	require.NoError(t, c.Delete(ctx, p.ID))
	_, err := c.Get(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	assert.ErrorIs(t, c.Delete(ctx, p.ID), models.ErrProductNotFound)
}

func TestMemoryCatalogListOrdered(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, c.Insert(ctx, &models.Product{Name: name, Price: 10}))
	}

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(3), all[2].ID)
}
