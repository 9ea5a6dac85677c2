package pricing

import (
	"fmt"

	"pricing-service/internal/models"
)

// ValidateProductFields checks the required fields of a candidate
// product. Returns a FieldError on the first violation.
func ValidateProductFields(p *models.Product) error {
	if p.Name == "" {
		return &models.FieldError{Field: "name", Reason: "name is required"}
	}
	if p.Price <= 0 {
		return &models.FieldError{Field: "price", Reason: "price must be greater than 0"}
	}
	if p.Stock < 0 {
		return &models.FieldError{Field: "stock", Reason: "stock cannot be negative"}
	}
	return nil
}

// ValidateProfitRules enforces the pricing invariants on a candidate
// product: price bounds, price above cost, discount bounds, and a
// minimum margin both on the raw price and on the discounted price.
func ValidateProfitRules(p *models.Product) error {
	if p.Price < PriceFloor || p.Price > PriceCeiling {
		return &models.RuleError{
			Rule:   "price_bounds",
			Reason: fmt.Sprintf("price %.2f is outside the allowed range [%.0f, %.0f]", p.Price, PriceFloor, PriceCeiling),
		}
	}

	if p.PurchasePrice > 0 && p.Price <= p.PurchasePrice {
		return &models.RuleError{
			Rule:   "price_above_cost",
			Reason: fmt.Sprintf("price %.2f must be greater than purchase price %.2f", p.Price, p.PurchasePrice),
		}
	}

	if p.DiscountValue > 0 {
		switch p.DiscountType {
		case models.DiscountFixed:
			if p.DiscountValue >= p.Price {
				return &models.RuleError{
					Rule:   "discount_bounds",
					Reason: fmt.Sprintf("fixed discount %.2f must be less than price %.2f", p.DiscountValue, p.Price),
				}
			}
		default:
			if p.DiscountValue > MaxPercentageDiscount {
				return &models.RuleError{
					Rule:   "discount_bounds",
					Reason: fmt.Sprintf("percentage discount %.2f%% exceeds the %.0f%% maximum", p.DiscountValue, MaxPercentageDiscount),
				}
			}
		}
	}

	if p.PurchasePrice > 0 {
		if p.DiscountValue > 0 {
			final := FinalPrice(p.Price, p.DiscountType, p.DiscountValue)
			if final <= p.PurchasePrice {
				return &models.RuleError{
					Rule:   "discounted_price_above_cost",
					Reason: fmt.Sprintf("discounted price %.2f must be greater than purchase price %.2f", final, p.PurchasePrice),
				}
			}
			if m := Margin(final, p.PurchasePrice); m < MinMarginPct {
				return &models.RuleError{
					Rule:   "min_margin",
					Reason: fmt.Sprintf("margin %.2f%% on discounted price is below the %.0f%% minimum", m, MinMarginPct),
				}
			}
		}
		if m := Margin(p.Price, p.PurchasePrice); m < MinMarginPct {
			return &models.RuleError{
				Rule:   "min_margin",
				Reason: fmt.Sprintf("margin %.2f%% is below the %.0f%% minimum", m, MinMarginPct),
			}
		}
	}

	return nil
}

// ValidateBulkRequest rejects malformed bulk update requests before
// any record is touched.
func ValidateBulkRequest(req *models.BulkUpdateRequest) error {
	if req.Pricing == nil && req.Discount == nil {
		return &models.RequestError{Reason: "request must carry either a pricing or a discount change"}
	}
	if req.Pricing != nil && req.Discount != nil {
		return &models.RequestError{Reason: "request cannot carry both a pricing and a discount change"}
	}

	if req.Discount != nil {
		d := req.Discount
		if d.Value <= 0 {
			return &models.RequestError{Reason: "discount value must be greater than 0"}
		}
		switch d.Resolution {
		case models.ResolutionSkip, models.ResolutionOverride, models.ResolutionMerge:
		default:
			return &models.RequestError{Reason: fmt.Sprintf("unknown conflict resolution %q", d.Resolution)}
		}
		return nil
	}

	pc := req.Pricing
	switch pc.Strategy {
	case models.StrategyRange:
		if pc.MinPrice == nil || pc.MaxPrice == nil {
			return &models.RequestError{Reason: "range strategy requires both min and max price"}
		}
		if *pc.MinPrice >= *pc.MaxPrice {
			return &models.RequestError{Reason: "range strategy requires min price below max price"}
		}
	case models.StrategyPercentage, models.StrategyFixed:
		if pc.Value == nil {
			return &models.RequestError{Reason: fmt.Sprintf("%s strategy requires a value", pc.Strategy)}
		}
	default:
		return &models.RequestError{Reason: fmt.Sprintf("unknown strategy %q", pc.Strategy)}
	}
	return nil
}
