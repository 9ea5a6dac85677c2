package worker

import (
	"context"

	"pricing-service/internal/broker"
	"pricing-service/internal/models"
	"pricing-service/internal/service"
	"pricing-service/internal/util"

	"go.uber.org/zap"
)

// CacheWorker consumes catalog events and keeps the read-side cache
// honest: any event that changed a price (or removed a product) drops
// the affected cache entries.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        service.Cache
	logger       *zap.Logger
}

// NewCacheWorker creates a new cache invalidation worker
func NewCacheWorker(consumer *broker.Consumer, cache service.Cache) *CacheWorker {
	w := &CacheWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnPriceChanged(w.handlePriceChanged)
	eventHandler.OnBulkUpdateCompleted(w.handleBulkUpdateCompleted)
	eventHandler.OnProductDeleted(w.handleProductDeleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cache worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	w.logger.Info("Stopping cache worker")
	return w.consumer.Close()
}

func (w *CacheWorker) handlePriceChanged(ctx context.Context, event *models.PriceChangedEvent) error {
	w.logger.Debug("Invalidating cached product",
		zap.Int64("product_id", event.ProductID),
		zap.Float64("new_price", event.NewPrice))
	return w.cache.InvalidateProduct(ctx, event.ProductID)
}

func (w *CacheWorker) handleBulkUpdateCompleted(ctx context.Context, event *models.BulkUpdateCompletedEvent) error {
	w.logger.Debug("Invalidating cached products after bulk update",
		zap.String("operation_id", event.OperationID),
		zap.Int("count", len(event.ProductIDs)))
	return w.cache.InvalidateProducts(ctx, event.ProductIDs)
}

func (w *CacheWorker) handleProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	return w.cache.InvalidateProduct(ctx, event.ProductID)
}
