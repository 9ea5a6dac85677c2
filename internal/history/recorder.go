// Package history keeps the append-only price change audit trail.
package history

import (
	"sync"
	"time"

	"pricing-service/internal/models"
)

// Recorder is a thread-safe, append-only store of price change
// entries, keyed by product ID. Entries are immutable once appended.
type Recorder struct {
	mu      sync.RWMutex
	entries map[int64][]models.PriceChangeEntry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{entries: make(map[int64][]models.PriceChangeEntry)}
}

// Record appends an audit entry for a price change. No-op updates
// (oldPrice == newPrice) are never recorded.
func (r *Recorder) Record(productID int64, oldPrice, newPrice float64, actor, reason string) {
	if oldPrice == newPrice {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[productID] = append(r.entries[productID], models.PriceChangeEntry{
		Timestamp: time.Now(),
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Actor:     actor,
		Reason:    reason,
	})
}

// History returns the recorded entries for a product, most recent
// first. Products without history get an empty slice; placeholder
// entries are never invented.
func (r *Recorder) History(productID int64) []models.PriceChangeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[productID]
	out := make([]models.PriceChangeEntry, len(stored))
	for i, e := range stored {
		out[len(stored)-1-i] = e
	}
	return out
}

// Len returns the number of entries recorded for a product.
func (r *Recorder) Len(productID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[productID])
}

// Drop removes the history of a deleted product.
func (r *Recorder) Drop(productID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, productID)
}
