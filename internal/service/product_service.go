package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pricing-service/internal/broker"
	"pricing-service/internal/history"
	"pricing-service/internal/models"
	"pricing-service/internal/pricing"
	"pricing-service/internal/redisclient"
	"pricing-service/internal/store"
	"pricing-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache is the read-side product cache. Nil disables caching.
type Cache interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	SetProduct(ctx context.Context, p *models.Product, ttl time.Duration) error
	InvalidateProduct(ctx context.Context, id int64) error
	InvalidateProducts(ctx context.Context, ids []int64) error
}

// Publisher emits catalog domain events. Nil disables publishing.
type Publisher interface {
	PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error
	PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error
	PublishPriceChanged(ctx context.Context, event *models.PriceChangedEvent) error
	PublishBulkUpdateCompleted(ctx context.Context, event *models.BulkUpdateCompletedEvent) error
}

// ProductService composes the catalog store, validation rules, margin
// math and the price history recorder into the engine operations.
// Mutations are serialized through a single write mutex; reads run
// concurrently.
type ProductService struct {
	catalog  store.Catalog
	recorder *history.Recorder
	cache    Cache
	events   Publisher
	logger   *zap.Logger

	// writeMu makes each mutating operation run to completion before
	// the next is accepted against the shared catalog.
	writeMu sync.Mutex
}

var (
	_ Cache     = (*redisclient.Client)(nil)
	_ Publisher = (*broker.EventPublisher)(nil)
)

// NewProductService creates a new product service. cache and events
// may be nil.
func NewProductService(catalog store.Catalog, recorder *history.Recorder, cache Cache, events Publisher) *ProductService {
	return &ProductService{
		catalog:  catalog,
		recorder: recorder,
		cache:    cache,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// Create validates and stores a new product. Derived fields are
// computed before the record is persisted.
func (s *ProductService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := pricing.ValidateProductFields(p); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("field").Inc()
		return nil, err
	}
	if err := pricing.ValidateProfitRules(p); err != nil {
		util.ValidationFailuresTotal.WithLabelValues("rule").Inc()
		return nil, err
	}

	if p.DiscountPriority == 0 {
		p.DiscountPriority = 1
	}
	s.recompute(p)

	if err := s.catalog.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.String("category", p.Category),
		zap.Float64("price", p.Price))

	s.publishCreated(ctx, p)
	return p, nil
}

// GetByID returns the role-gated view of a product. Financial fields
// are elided unless role is admin.
func (s *ProductService) GetByID(ctx context.Context, id int64, role string) (*models.ProductView, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := p.View(role)
	return &v, nil
}

// GetBySKU returns the role-gated view of a product looked up by SKU.
func (s *ProductService) GetBySKU(ctx context.Context, sku string, role string) (*models.ProductView, error) {
	p, err := s.catalog.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	v := p.View(role)
	return &v, nil
}

// List returns role-gated views of the catalog, optionally narrowed to
// one category.
func (s *ProductService) List(ctx context.Context, role, category string) ([]models.ProductView, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		if category != "" && category != models.CategoryAll && products[i].Category != category {
			continue
		}
		views = append(views, products[i].View(role))
	}
	return views, nil
}

// Update applies a merge patch to a product. A price change snapshots
// the previous price and appends a history entry; a no-op patch
// returns the unchanged record and appends nothing.
func (s *ProductService) Update(ctx context.Context, id int64, patch *models.ProductPatch, actor string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Price != nil && *patch.Price <= 0 {
		util.ValidationFailuresTotal.WithLabelValues("field").Inc()
		return nil, &models.FieldError{Field: "price", Reason: "price must be greater than 0"}
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		util.ValidationFailuresTotal.WithLabelValues("field").Inc()
		return nil, &models.FieldError{Field: "stock", Reason: "stock cannot be negative"}
	}
	if patch.Price != nil && patch.PurchasePrice != nil && *patch.Price <= *patch.PurchasePrice {
		util.ValidationFailuresTotal.WithLabelValues("rule").Inc()
		return nil, &models.RuleError{
			Rule:   "price_above_cost",
			Reason: fmt.Sprintf("price %.2f must be greater than purchase price %.2f", *patch.Price, *patch.PurchasePrice),
		}
	}

	merged := *current
	applyPatch(&merged, patch)
	merged.ID = current.ID

	priceChanged := patch.Price != nil && *patch.Price != current.Price
	if priceChanged {
		prev := current.Price
		merged.PreviousPrice = &prev
	}
	s.recompute(&merged)

	if err := s.catalog.Update(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if priceChanged {
		s.recorder.Record(id, current.Price, merged.Price, actor, "Manual update")
		util.PriceUpdatesTotal.WithLabelValues("single").Inc()
		s.publishPriceChanged(ctx, id, current.Price, merged.Price, actor, "Manual update")
		s.logger.Info("Price updated",
			zap.Int64("product_id", id),
			zap.Float64("old_price", current.Price),
			zap.Float64("new_price", merged.Price),
			zap.String("actor", actor))
	}

	s.invalidate(ctx, id)
	return &merged, nil
}

// Delete removes a product and its history. No tombstone is kept.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Drop(id)
	s.invalidate(ctx, id)

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	if s.events != nil {
		event := &models.ProductDeletedEvent{
			BaseEvent: newBaseEvent(models.EventTypeProductDeleted),
			ProductID: id,
		}
		if err := s.events.PublishProductDeleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
		}
	}
	return nil
}

// GetPriceHistory returns the audit trail of a product, most recent
// first. A product without recorded changes gets an empty slice.
func (s *ProductService) GetPriceHistory(ctx context.Context, id int64) ([]models.PriceChangeEntry, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	return s.recorder.History(id), nil
}

// ValidateProfitRules checks a candidate product against the profit
// and discount rules without touching the catalog.
func (s *ProductService) ValidateProfitRules(p *models.Product) error {
	return pricing.ValidateProfitRules(p)
}

// ValidateOfferConflicts runs offer-conflict detection for a candidate
// against the current catalog snapshot.
func (s *ProductService) ValidateOfferConflicts(ctx context.Context, candidate *models.Product, excludeID int64) (*models.ConflictReport, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ValidateOfferConflicts")
	defer span.End()

	snapshot, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	report := pricing.DetectOfferConflicts(candidate, snapshot, excludeID)
	for _, c := range report.Conflicts {
		util.OfferConflictsTotal.WithLabelValues(c.Type).Inc()
	}
	return report, nil
}

// BulkPartialUpdate applies per-entry price/cost patches. Entries fail
// independently; a failed entry is collected and the batch continues.
func (s *ProductService) BulkPartialUpdate(ctx context.Context, updates []models.PartialUpdate, actor string) (*models.PartialUpdateResult, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.BulkPartialUpdate")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result := &models.PartialUpdateResult{
		TotalUpdates: len(updates),
		Errors:       []models.PartialUpdateError{},
	}
	var touched []int64

	for _, u := range updates {
		if err := s.applyPartial(ctx, &u, actor); err != nil {
			result.Errors = append(result.Errors, models.PartialUpdateError{
				ProductID: u.ProductID,
				Error:     err.Error(),
			})
			continue
		}
		result.SuccessCount++
		touched = append(touched, u.ProductID)
	}

	if s.cache != nil && len(touched) > 0 {
		if err := s.cache.InvalidateProducts(ctx, touched); err != nil {
			s.logger.Warn("Failed to invalidate cached products", zap.Error(err))
		}
	}

	s.logger.Info("Partial bulk update finished",
		zap.Int("total", result.TotalUpdates),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

func (s *ProductService) applyPartial(ctx context.Context, u *models.PartialUpdate, actor string) error {
	p, err := s.catalog.Get(ctx, u.ProductID)
	if err != nil {
		return err
	}

	if u.BasePrice != nil && *u.BasePrice <= 0 {
		return errors.New("Base price must be greater than 0")
	}

	base := p.Price
	if u.BasePrice != nil {
		base = *u.BasePrice
	}
	cost := p.PurchasePrice
	if u.CostPrice != nil {
		cost = *u.CostPrice
	}
	if cost > 0 && base <= cost {
		return errors.New("Base price must be greater than cost price")
	}

	oldPrice := p.Price
	if u.BasePrice != nil {
		p.Price = *u.BasePrice
	}
	if u.CostPrice != nil {
		p.PurchasePrice = *u.CostPrice
	}
	if p.Price != oldPrice {
		prev := oldPrice
		p.PreviousPrice = &prev
	}
	s.recompute(p)

	if err := s.catalog.Update(ctx, p); err != nil {
		return err
	}

	if p.Price != oldPrice {
		s.recorder.Record(p.ID, oldPrice, p.Price, actor, "Bulk price update")
		util.PriceUpdatesTotal.WithLabelValues("partial").Inc()
		s.publishPriceChanged(ctx, p.ID, oldPrice, p.Price, actor, "Bulk price update")
	}
	return nil
}

// get reads through the cache when one is configured.
func (s *ProductService) get(ctx context.Context, id int64) (*models.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProduct(ctx, id); err != nil {
			s.logger.Warn("Cache read failed", zap.Int64("product_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, p, redisclient.DefaultProductTTL); err != nil {
			s.logger.Warn("Cache write failed", zap.Int64("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

// recompute refreshes the derived pricing fields.
func (s *ProductService) recompute(p *models.Product) {
	if p.PurchasePrice > 0 && p.Price > 0 {
		p.ProfitMargin = pricing.Margin(p.Price, p.PurchasePrice)
	} else {
		p.ProfitMargin = 0
	}
	p.MinSellingPrice = pricing.MinSellingPrice(p.PurchasePrice)
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached product", zap.Int64("product_id", id), zap.Error(err))
	}
}

func (s *ProductService) publishCreated(ctx context.Context, p *models.Product) {
	if s.events == nil {
		return
	}
	event := &models.ProductCreatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductCreated),
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
	}
	if err := s.events.PublishProductCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
	}
}

func (s *ProductService) publishPriceChanged(ctx context.Context, id int64, oldPrice, newPrice float64, actor, reason string) {
	if s.events == nil {
		return
	}
	event := &models.PriceChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypePriceChanged),
		ProductID: id,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Actor:     actor,
		Reason:    reason,
	}
	if err := s.events.PublishPriceChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish PriceChanged event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func applyPatch(p *models.Product, patch *models.ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.MinStock != nil {
		p.MinStock = *patch.MinStock
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.PurchasePrice != nil {
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.DiscountType != nil {
		p.DiscountType = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		p.DiscountValue = *patch.DiscountValue
	}
	if patch.DiscountStartDate != nil {
		p.DiscountStartDate = patch.DiscountStartDate
	}
	if patch.DiscountEndDate != nil {
		p.DiscountEndDate = patch.DiscountEndDate
	}
	if patch.DiscountPriority != nil {
		p.DiscountPriority = *patch.DiscountPriority
	}
}
