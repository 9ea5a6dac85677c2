package models

import "time"

// Event types
const (
	EventTypeProductCreated      = "PRODUCT_CREATED"
	EventTypeProductDeleted      = "PRODUCT_DELETED"
	EventTypePriceChanged        = "PRICE_CHANGED"
	EventTypeBulkUpdateCompleted = "BULK_UPDATE_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent published when a product is created
type ProductCreatedEvent struct {
	BaseEvent
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}

// ProductDeletedEvent published when a product is removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
}

// PriceChangedEvent published when a committed mutation changes a price
type PriceChangedEvent struct {
	BaseEvent
	ProductID int64   `json:"product_id"`
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
	Actor     string  `json:"actor"`
	Reason    string  `json:"reason"`
}

// BulkUpdateCompletedEvent published after a bulk update finishes
type BulkUpdateCompletedEvent struct {
	BaseEvent
	OperationID   string   `json:"operation_id"`
	Strategy      Strategy `json:"strategy"`
	UpdatedCount  int      `json:"updated_count"`
	TotalFiltered int      `json:"total_filtered"`
	ConflictCount int      `json:"conflict_count"`
	ProductIDs    []int64  `json:"product_ids"`
}
