package models

import "time"

// DiscountType determines how a discount value is applied to a price.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Strategy selects the price computation used by a bulk pricing update.
type Strategy string

const (
	StrategyPercentage       Strategy = "percentage"
	StrategyFixed            Strategy = "fixed"
	StrategyRange            Strategy = "range"
	StrategyCategoryDiscount Strategy = "category_discount"
)

// ConflictResolution determines how a bulk discount update treats a
// record that already carries an active discount.
type ConflictResolution string

const (
	ResolutionSkip     ConflictResolution = "skip"
	ResolutionOverride ConflictResolution = "override"
	ResolutionMerge    ConflictResolution = "merge"
)

// Product is a catalog record. PurchasePrice, MinSellingPrice and
// ProfitMargin are financial fields visible to admin callers only.
type Product struct {
	ID                int64        `db:"id" json:"id"`
	Name              string       `db:"name" json:"name"`
	SKU               string       `db:"sku" json:"sku,omitempty"`
	Category          string       `db:"category" json:"category"`
	Stock             int          `db:"stock" json:"stock"`
	MinStock          int          `db:"min_stock" json:"min_stock"`
	IsActive          bool         `db:"is_active" json:"is_active"`
	Price             float64      `db:"price" json:"price"`
	PurchasePrice     float64      `db:"purchase_price" json:"purchase_price,omitempty"`
	PreviousPrice     *float64     `db:"previous_price" json:"previous_price,omitempty"`
	DiscountType      DiscountType `db:"discount_type" json:"discount_type,omitempty"`
	DiscountValue     float64      `db:"discount_value" json:"discount_value,omitempty"`
	DiscountStartDate *time.Time   `db:"discount_start_date" json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time   `db:"discount_end_date" json:"discount_end_date,omitempty"`
	DiscountPriority  int          `db:"discount_priority" json:"discount_priority"`
	ProfitMargin      float64      `db:"profit_margin" json:"profit_margin,omitempty"`
	MinSellingPrice   float64      `db:"min_selling_price" json:"min_selling_price,omitempty"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// HasDiscount reports whether the product carries a discount that is
// active at t. A discount with no date window is always active.
func (p *Product) HasDiscount(t time.Time) bool {
	if p.DiscountValue <= 0 {
		return false
	}
	if p.DiscountStartDate != nil && t.Before(*p.DiscountStartDate) {
		return false
	}
	if p.DiscountEndDate != nil && t.After(*p.DiscountEndDate) {
		return false
	}
	return true
}

// RoleAdmin is the only role allowed to see financial fields.
const RoleAdmin = "admin"

// ProductView is the read-side representation of a product. Financial
// fields are pointers so they can be elided for non-admin callers.
type ProductView struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	SKU               string       `json:"sku,omitempty"`
	Category          string       `json:"category"`
	Stock             int          `json:"stock"`
	MinStock          int          `json:"min_stock"`
	IsActive          bool         `json:"is_active"`
	Price             float64      `json:"price"`
	PreviousPrice     *float64     `json:"previous_price,omitempty"`
	DiscountType      DiscountType `json:"discount_type,omitempty"`
	DiscountValue     float64      `json:"discount_value,omitempty"`
	DiscountStartDate *time.Time   `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time   `json:"discount_end_date,omitempty"`
	DiscountPriority  int          `json:"discount_priority"`
	PurchasePrice     *float64     `json:"purchase_price,omitempty"`
	ProfitMargin      *float64     `json:"profit_margin,omitempty"`
	MinSellingPrice   *float64     `json:"min_selling_price,omitempty"`
}

// View builds the role-gated representation of p.
func (p *Product) View(role string) ProductView {
	v := ProductView{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Category:          p.Category,
		Stock:             p.Stock,
		MinStock:          p.MinStock,
		IsActive:          p.IsActive,
		Price:             p.Price,
		PreviousPrice:     p.PreviousPrice,
		DiscountType:      p.DiscountType,
		DiscountValue:     p.DiscountValue,
		DiscountStartDate: p.DiscountStartDate,
		DiscountEndDate:   p.DiscountEndDate,
		DiscountPriority:  p.DiscountPriority,
	}
	if role == RoleAdmin {
		purchase, margin, minSelling := p.PurchasePrice, p.ProfitMargin, p.MinSellingPrice
		v.PurchasePrice = &purchase
		v.ProfitMargin = &margin
		v.MinSellingPrice = &minSelling
	}
	return v
}

// PriceChangeEntry is an immutable audit record of a price change.
type PriceChangeEntry struct {
	Timestamp time.Time `json:"timestamp"`
	OldPrice  float64   `json:"old_price"`
	NewPrice  float64   `json:"new_price"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason"`
}

// ProductPatch is a merge patch for a single-record update. Nil fields
// are left untouched on the target record.
type ProductPatch struct {
	Name              *string       `json:"name,omitempty"`
	SKU               *string       `json:"sku,omitempty"`
	Category          *string       `json:"category,omitempty"`
	Stock             *int          `json:"stock,omitempty"`
	MinStock          *int          `json:"min_stock,omitempty"`
	IsActive          *bool         `json:"is_active,omitempty"`
	Price             *float64      `json:"price,omitempty"`
	PurchasePrice     *float64      `json:"purchase_price,omitempty"`
	DiscountType      *DiscountType `json:"discount_type,omitempty"`
	DiscountValue     *float64      `json:"discount_value,omitempty"`
	DiscountStartDate *time.Time    `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time    `json:"discount_end_date,omitempty"`
	DiscountPriority  *int          `json:"discount_priority,omitempty"`
}

// BulkFilter narrows the catalog subset a bulk update applies to.
// CategoryAll matches every category.
type BulkFilter struct {
	Category       string `json:"category"`
	LowStockOnly   bool   `json:"low_stock_only"`
	StockThreshold int    `json:"stock_threshold"`
}

// CategoryAll is the wildcard category filter.
const CategoryAll = "all"

// PricingChange is the pricing half of a bulk update. MinPrice and
// MaxPrice are the bounds for the range strategy and, when supplied
// with other strategies, a request-level clamp on the computed price.
type PricingChange struct {
	Strategy Strategy `json:"strategy"`
	Value    *float64 `json:"value,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// DiscountChange is the discount half of a bulk update.
type DiscountChange struct {
	Type       DiscountType       `json:"discount_type"`
	Value      float64            `json:"discount_value"`
	StartDate  *time.Time         `json:"start_date,omitempty"`
	EndDate    *time.Time         `json:"end_date,omitempty"`
	Resolution ConflictResolution `json:"conflict_resolution"`
}

// BulkUpdateRequest carries exactly one of Pricing or Discount.
type BulkUpdateRequest struct {
	Filter   BulkFilter      `json:"filter"`
	Pricing  *PricingChange  `json:"pricing,omitempty"`
	Discount *DiscountChange `json:"discount,omitempty"`
}

// Strategy returns the effective strategy of the request.
func (r *BulkUpdateRequest) Strategy() Strategy {
	if r.Discount != nil {
		return StrategyCategoryDiscount
	}
	if r.Pricing != nil {
		return r.Pricing.Strategy
	}
	return ""
}

// ConflictProduct identifies a record excluded from a bulk update by
// the skip policy.
type ConflictProduct struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BulkUpdateSummary is the aggregate result of a bulk update. It is a
// summary, not a per-record result list.
type BulkUpdateSummary struct {
	OperationID      string            `json:"operation_id"`
	Strategy         Strategy          `json:"strategy"`
	UpdatedCount     int               `json:"updated_count"`
	TotalFiltered    int               `json:"total_filtered"`
	ConflictCount    int               `json:"conflict_count"`
	ConflictProducts []ConflictProduct `json:"conflict_products,omitempty"`
}

// PartialUpdate is one entry of a bulk partial price update. Only the
// non-nil fields are applied.
type PartialUpdate struct {
	ProductID int64    `json:"product_id"`
	BasePrice *float64 `json:"base_price,omitempty"`
	CostPrice *float64 `json:"cost_price,omitempty"`
}

// PartialUpdateError isolates a failed entry of a partial batch.
type PartialUpdateError struct {
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
}

// PartialUpdateResult accumulates per-entry outcomes; a failed entry
// never aborts the batch.
type PartialUpdateResult struct {
	SuccessCount int                  `json:"success_count"`
	TotalUpdates int                  `json:"total_updates"`
	Errors       []PartialUpdateError `json:"errors"`
}

// Conflict types reported by offer-conflict detection.
const (
	ConflictOverlappingDates  = "overlapping_dates"
	ConflictExcessiveDiscount = "excessive_discount"
	ConflictInvalidDiscount   = "invalid_discount"
	ConflictLowProfitMargin   = "low_profit_margin"
)

// ConflictRecord is a blocking finding from offer-conflict detection.
// Never persisted.
type ConflictRecord struct {
	Type      string `json:"type"`
	ProductID int64  `json:"product_id"`
	Details   string `json:"details"`
}

// ConflictReport is the outcome of offer-conflict detection. Conflicts
// block; warnings are advisory.
type ConflictReport struct {
	Conflicts []ConflictRecord `json:"conflicts"`
	Warnings  []string         `json:"warnings"`
}

// IsValid reports whether the candidate change is acceptable.
func (r *ConflictReport) IsValid() bool {
	return len(r.Conflicts) == 0
}
