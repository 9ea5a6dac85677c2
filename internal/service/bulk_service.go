package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"pricing-service/internal/models"
	"pricing-service/internal/pricing"
	"pricing-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conflictListLimit caps the conflict products carried in a bulk
// update summary.
const conflictListLimit = 5

// BulkUpdatePrices applies a pricing strategy or a category discount
// across the filtered catalog subset. Each record is resolved and
// committed independently; the batch is not transactional, and a
// record that fails the commit threshold is simply left unchanged.
func (s *ProductService) BulkUpdatePrices(ctx context.Context, req *models.BulkUpdateRequest, actor string) (*models.BulkUpdateSummary, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.BulkUpdatePrices")
	defer span.End()

	if err := pricing.ValidateBulkRequest(req); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("request").Inc()
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	defer func() {
		util.BulkUpdateLatency.Observe(time.Since(start).Seconds())
	}()

	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	filtered := filterProducts(products, req.Filter)

	summary := &models.BulkUpdateSummary{
		OperationID:   fmt.Sprintf("bulk_%s", uuid.New().String()),
		Strategy:      req.Strategy(),
		TotalFiltered: len(filtered),
	}

	now := time.Now()
	var updatedIDs []int64

	for i := range filtered {
		p := &filtered[i]

		var (
			newPrice    float64
			setDiscount bool
		)

		if req.Discount != nil {
			d := req.Discount
			if p.HasDiscount(now) {
				switch d.Resolution {
				case models.ResolutionSkip:
					summary.ConflictCount++
					if len(summary.ConflictProducts) < conflictListLimit {
						summary.ConflictProducts = append(summary.ConflictProducts, models.ConflictProduct{
							ID:   p.ID,
							Name: p.Name,
						})
					}
					continue
				case models.ResolutionMerge:
					if !pricing.MergeKeepsProposed(p, d, now) {
						continue
					}
				}
			}
			newPrice = pricing.FinalPrice(p.Price, d.Type, d.Value)
			setDiscount = true
		} else {
			pc := req.Pricing
			switch pc.Strategy {
			case models.StrategyPercentage:
				newPrice = p.Price * (1 + *pc.Value/100)
			case models.StrategyFixed:
				newPrice = p.Price + *pc.Value
			case models.StrategyRange:
				newPrice = pricing.Clamp(p.Price, *pc.MinPrice, *pc.MaxPrice)
			}
		}

		newPrice = pricing.Clamp(newPrice, pricing.PriceFloor, pricing.PriceCeiling)
		if req.Pricing != nil {
			if req.Pricing.MinPrice != nil && newPrice < *req.Pricing.MinPrice {
				newPrice = *req.Pricing.MinPrice
			}
			if req.Pricing.MaxPrice != nil && newPrice > *req.Pricing.MaxPrice {
				newPrice = *req.Pricing.MaxPrice
			}
		}
		newPrice = pricing.Round2(newPrice)

		// A price that would land at or below cost, or under the margin
		// floor, is never committed; the record is left unchanged.
		if p.PurchasePrice > 0 && pricing.Margin(newPrice, p.PurchasePrice) < pricing.MinMarginPct {
			continue
		}

		if math.Abs(newPrice-p.Price) <= pricing.CommitEpsilon {
			continue
		}

		oldPrice := p.Price
		prev := oldPrice
		p.PreviousPrice = &prev
		p.Price = newPrice
		if setDiscount {
			d := req.Discount
			p.DiscountType = d.Type
			p.DiscountValue = d.Value
			p.DiscountStartDate = d.StartDate
			p.DiscountEndDate = d.EndDate
		}
		s.recompute(p)

		if err := s.catalog.Update(ctx, p); err != nil {
			s.logger.Error("Failed to commit bulk price change",
				zap.Int64("product_id", p.ID), zap.Error(err))
			continue
		}

		s.recorder.Record(p.ID, oldPrice, newPrice, actor, "Bulk update")
		util.PriceUpdatesTotal.WithLabelValues("bulk").Inc()
		summary.UpdatedCount++
		updatedIDs = append(updatedIDs, p.ID)
	}

	util.BulkUpdatesTotal.WithLabelValues(string(summary.Strategy)).Inc()
	util.BulkRecordsUpdatedTotal.Add(float64(summary.UpdatedCount))

	if s.cache != nil && len(updatedIDs) > 0 {
		if err := s.cache.InvalidateProducts(ctx, updatedIDs); err != nil {
			s.logger.Warn("Failed to invalidate cached products", zap.Error(err))
		}
	}

	if s.events != nil {
		event := &models.BulkUpdateCompletedEvent{
			BaseEvent:     newBaseEvent(models.EventTypeBulkUpdateCompleted),
			OperationID:   summary.OperationID,
			Strategy:      summary.Strategy,
			UpdatedCount:  summary.UpdatedCount,
			TotalFiltered: summary.TotalFiltered,
			ConflictCount: summary.ConflictCount,
			ProductIDs:    updatedIDs,
		}
		if err := s.events.PublishBulkUpdateCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish BulkUpdateCompleted event", zap.Error(err))
		}
	}

	s.logger.Info("Bulk update finished",
		zap.String("operation_id", summary.OperationID),
		zap.String("strategy", string(summary.Strategy)),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("filtered", summary.TotalFiltered),
		zap.Int("conflicts", summary.ConflictCount))

	return summary, nil
}

// filterProducts narrows the catalog by category and, when requested,
// to records at or below the stock threshold.
func filterProducts(products []models.Product, f models.BulkFilter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != models.CategoryAll && p.Category != f.Category {
			continue
		}
		if f.LowStockOnly && p.Stock > f.StockThreshold {
			continue
		}
		out = append(out, p)
	}
	return out
}
