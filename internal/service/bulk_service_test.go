package service

import (
	"context"
	"testing"

	"pricing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminPrice(t *testing.T, s *ProductService, id int64) float64 {
	t.Helper()
	view, err := s.GetByID(context.Background(), id, models.RoleAdmin)
	require.NoError(t, err)
	return view.Price
}

func TestBulkUpdatePercentageAcrossCatalog(t *testing.T) {
	s, recorder := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, models.Product{Name: "A", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})
	b := mustCreate(t, s, models.Product{Name: "B", Category: "toys", Price: 200, PurchasePrice: 100, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: models.CategoryAll},
		Pricing: &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(10)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.UpdatedCount)
	assert.Equal(t, 2, summary.TotalFiltered)
	assert.Zero(t, summary.ConflictCount)
	assert.NotEmpty(t, summary.OperationID)
	assert.Equal(t, models.StrategyPercentage, summary.Strategy)

	assert.Equal(t, 110.0, adminPrice(t, s, a.ID))
	assert.Equal(t, 220.0, adminPrice(t, s, b.ID))
	assert.Equal(t, 1, recorder.Len(a.ID))
	assert.Equal(t, 1, recorder.Len(b.ID))
}

func TestBulkUpdateRangeClampsIntoWindow(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	high := mustCreate(t, s, models.Product{Name: "High", Category: "tools", Price: 100, PurchasePrice: 40, Stock: 5})
	low := mustCreate(t, s, models.Product{Name: "Low", Category: "tools", Price: 30, PurchasePrice: 20, Stock: 5})
	inside := mustCreate(t, s, models.Product{Name: "Inside", Category: "tools", Price: 60, PurchasePrice: 40, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: "tools"},
		Pricing: &models.PricingChange{Strategy: models.StrategyRange, MinPrice: f64(50), MaxPrice: f64(80)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 80.0, adminPrice(t, s, high.ID))
	assert.Equal(t, 50.0, adminPrice(t, s, low.ID))
	// already inside the window, nothing to commit
	assert.Equal(t, 60.0, adminPrice(t, s, inside.ID))
	assert.Equal(t, 2, summary.UpdatedCount)
	assert.Equal(t, 3, summary.TotalFiltered)
}

func TestBulkUpdateFixedDelta(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, models.Product{Name: "A", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(-15.5)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 84.5, adminPrice(t, s, a.ID))
}

func TestBulkUpdateClampsToGlobalBounds(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	expensive := mustCreate(t, s, models.Product{Name: "Big", Category: "tools", Price: 60000, PurchasePrice: 10000, Stock: 5})
	cheap := mustCreate(t, s, models.Product{Name: "Small", Category: "tools", Price: 5, Stock: 5})

	_, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Pricing: &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(100)},
	}, "ops")
	require.NoError(t, err)
	assert.Equal(t, 100000.0, adminPrice(t, s, expensive.ID))

	_, err = s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: "tools"},
		Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(-20)},
	}, "ops")
	require.NoError(t, err)
	assert.Equal(t, 1.0, adminPrice(t, s, cheap.ID))
}

func TestBulkUpdateNeverCommitsBelowMarginFloor(t *testing.T) {
	s, recorder := newTestService(t)
	ctx := context.Background()

	tight := mustCreate(t, s, models.Product{Name: "Tight", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})
	roomy := mustCreate(t, s, models.Product{Name: "Roomy", Category: "tools", Price: 200, PurchasePrice: 80, Stock: 5})

	// -30 would land Tight at 70, below its cost of 80; Roomy stays
	// comfortably above cost and commits.
	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: "tools"},
		Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(-30)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 2, summary.TotalFiltered)
	assert.Equal(t, 100.0, adminPrice(t, s, tight.ID))
	assert.Equal(t, 170.0, adminPrice(t, s, roomy.ID))
	assert.Zero(t, recorder.Len(tight.ID))

	// a cut that keeps the margin at or above 5% still commits
	summary, err = s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: "tools"},
		Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(-15)},
	}, "ops")
	require.NoError(t, err)
	// Tight: 85 against cost 80 is a 6.25% margin
	assert.Equal(t, 85.0, adminPrice(t, s, tight.ID))
	assert.Equal(t, 155.0, adminPrice(t, s, roomy.ID))
	assert.Equal(t, 2, summary.UpdatedCount)
}

func TestBulkDiscountNeverCommitsBelowMarginFloor(t *testing.T) {
	s, recorder := newTestService(t)
	ctx := context.Background()

	p := mustCreate(t, s, models.Product{Name: "Costly", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})

	// 90% off would land at 10 against a cost of 80
	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 90, Resolution: models.ResolutionOverride},
	}, "ops")
	require.NoError(t, err)

	assert.Zero(t, summary.UpdatedCount)
	assert.Equal(t, 100.0, adminPrice(t, s, p.ID))
	assert.Zero(t, recorder.Len(p.ID))

	// the rejected discount is not attached to the record either
	after, err := s.GetByID(ctx, p.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, after.DiscountValue)

	// a 10% discount leaves 90 against 80, a 12.5% margin, and commits
	summary, err = s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 10, Resolution: models.ResolutionOverride},
	}, "ops")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 90.0, adminPrice(t, s, p.ID))
}

func TestBulkUpdateSkipsSubEpsilonChanges(t *testing.T) {
	s, recorder := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, models.Product{Name: "A", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(0.005)},
	}, "ops")
	require.NoError(t, err)

	assert.Zero(t, summary.UpdatedCount)
	assert.Equal(t, 1, summary.TotalFiltered)
	assert.Equal(t, 100.0, adminPrice(t, s, a.ID))
	assert.Zero(t, recorder.Len(a.ID))
}

func TestBulkUpdateCategoryFilter(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	tool := mustCreate(t, s, models.Product{Name: "Hammer", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})
	toy := mustCreate(t, s, models.Product{Name: "Ball", Category: "toys", Price: 100, PurchasePrice: 80, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: "tools"},
		Pricing: &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(10)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalFiltered)
	assert.Equal(t, 110.0, adminPrice(t, s, tool.ID))
	assert.Equal(t, 100.0, adminPrice(t, s, toy.ID))
}

func TestBulkUpdateLowStockFilter(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	scarce := mustCreate(t, s, models.Product{Name: "Scarce", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 3})
	plenty := mustCreate(t, s, models.Product{Name: "Plenty", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 50})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:  models.BulkFilter{Category: models.CategoryAll, LowStockOnly: true, StockThreshold: 5},
		Pricing: &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(-10)},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalFiltered)
	assert.Equal(t, 90.0, adminPrice(t, s, scarce.ID))
	assert.Equal(t, 100.0, adminPrice(t, s, plenty.ID))
}

func TestBulkUpdateRejectsMalformedRequests(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, models.Product{Name: "A", Category: "tools", Price: 100, PurchasePrice: 80, Stock: 5})

	_, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{}, "ops")
	var reqErr *models.RequestError
	require.ErrorAs(t, err, &reqErr)

	_, err = s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Pricing:  &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(10)},
		Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 10, Resolution: models.ResolutionSkip},
	}, "ops")
	require.ErrorAs(t, err, &reqErr)

	// the catalog is untouched when the request itself is rejected
	assert.Equal(t, 100.0, adminPrice(t, s, a.ID))
}

func TestBulkDiscountSkipReportsConflicts(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	offered := mustCreate(t, s, models.Product{
		Name: "Offered", Category: "tools", Price: 100, PurchasePrice: 50, Stock: 5,
		DiscountType: models.DiscountPercentage, DiscountValue: 10,
	})
	plain := mustCreate(t, s, models.Product{Name: "Plain", Category: "tools", Price: 100, PurchasePrice: 50, Stock: 5})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 20, Resolution: models.ResolutionSkip},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, models.StrategyCategoryDiscount, summary.Strategy)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 1, summary.ConflictCount)
	require.Len(t, summary.ConflictProducts, 1)
	assert.Equal(t, offered.ID, summary.ConflictProducts[0].ID)
	assert.Equal(t, "Offered", summary.ConflictProducts[0].Name)

	assert.Equal(t, 100.0, adminPrice(t, s, offered.ID))
	assert.Equal(t, 80.0, adminPrice(t, s, plain.ID))

	applied, err := s.GetByID(ctx, plain.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 20.0, applied.DiscountValue)
	assert.Equal(t, models.DiscountPercentage, applied.DiscountType)
}

func TestBulkDiscountOverrideReplacesExisting(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	offered := mustCreate(t, s, models.Product{
		Name: "Offered", Category: "tools", Price: 100, PurchasePrice: 50, Stock: 5,
		DiscountType: models.DiscountPercentage, DiscountValue: 10,
	})

	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountFixed, Value: 25, Resolution: models.ResolutionOverride},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Zero(t, summary.ConflictCount)
	assert.Equal(t, 75.0, adminPrice(t, s, offered.ID))

	after, err := s.GetByID(ctx, offered.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.DiscountFixed, after.DiscountType)
	assert.Equal(t, 25.0, after.DiscountValue)
}

func TestBulkDiscountMergeKeepsStrongerOffer(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	// existing 10% of 100 = 10 off
	offered := mustCreate(t, s, models.Product{
		Name: "Offered", Category: "tools", Price: 100, PurchasePrice: 50, Stock: 5,
		DiscountType: models.DiscountPercentage, DiscountValue: 10,
	})

	// weaker incoming offer loses the merge, record stays as-is
	summary, err := s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountFixed, Value: 5, Resolution: models.ResolutionMerge},
	}, "ops")
	require.NoError(t, err)
	assert.Zero(t, summary.UpdatedCount)
	assert.Equal(t, 100.0, adminPrice(t, s, offered.ID))

	// stronger incoming offer wins and is applied
	summary, err = s.BulkUpdatePrices(ctx, &models.BulkUpdateRequest{
		Filter:   models.BulkFilter{Category: "tools"},
		Discount: &models.DiscountChange{Type: models.DiscountFixed, Value: 25, Resolution: models.ResolutionMerge},
	}, "ops")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 75.0, adminPrice(t, s, offered.ID))
}
