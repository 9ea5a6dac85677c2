package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"pricing-service/internal/models"
	"pricing-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing catalog domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishProductCreated publishes a ProductCreated event
func (ep *EventPublisher) PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductDeleted publishes a ProductDeleted event
func (ep *EventPublisher) PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPriceChanged publishes a PriceChanged event
func (ep *EventPublisher) PublishPriceChanged(ctx context.Context, event *models.PriceChangedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBulkUpdateCompleted publishes a BulkUpdateCompleted event
func (ep *EventPublisher) PublishBulkUpdateCompleted(ctx context.Context, event *models.BulkUpdateCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OperationID, event)
}

// EventHandler routes incoming catalog events to registered callbacks
type EventHandler struct {
	onPriceChanged        func(context.Context, *models.PriceChangedEvent) error
	onBulkUpdateCompleted func(context.Context, *models.BulkUpdateCompletedEvent) error
	onProductDeleted      func(context.Context, *models.ProductDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPriceChanged registers a handler for PriceChanged events
func (eh *EventHandler) OnPriceChanged(handler func(context.Context, *models.PriceChangedEvent) error) {
	eh.onPriceChanged = handler
}

// OnBulkUpdateCompleted registers a handler for BulkUpdateCompleted events
func (eh *EventHandler) OnBulkUpdateCompleted(handler func(context.Context, *models.BulkUpdateCompletedEvent) error) {
	eh.onBulkUpdateCompleted = handler
}

// OnProductDeleted registers a handler for ProductDeleted events
func (eh *EventHandler) OnProductDeleted(handler func(context.Context, *models.ProductDeletedEvent) error) {
	eh.onProductDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypePriceChanged:
		if eh.onPriceChanged != nil {
			var event models.PriceChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PriceChanged event: %w", err)
			}
			return eh.onPriceChanged(ctx, &event)
		}

	case models.EventTypeBulkUpdateCompleted:
		if eh.onBulkUpdateCompleted != nil {
			var event models.BulkUpdateCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BulkUpdateCompleted event: %w", err)
			}
			return eh.onBulkUpdateCompleted(ctx, &event)
		}

	case models.EventTypeProductDeleted:
		if eh.onProductDeleted != nil {
			var event models.ProductDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductDeleted event: %w", err)
			}
			return eh.onProductDeleted(ctx, &event)
		}

	default:
		logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
