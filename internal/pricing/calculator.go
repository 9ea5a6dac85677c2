// Package pricing holds the pure price, margin and discount math and
// the stateless validation rules built on top of it.
package pricing

import (
	"math"

	"pricing-service/internal/models"
)

// Business constants for the profit rules.
const (
	// PriceFloor and PriceCeiling bound every committed price.
	PriceFloor   = 1.0
	PriceCeiling = 100000.0

	// MinMarginPct is the minimum acceptable profit margin, with or
	// without an active discount.
	MinMarginPct = 5.0

	// MaxPercentageDiscount is the upper bound for percentage discounts.
	MaxPercentageDiscount = 90.0

	// MinMarginMultiplier sets the minimum selling price floor above cost.
	MinMarginMultiplier = 1.1

	// CommitEpsilon is the smallest price delta worth committing;
	// anything below it is floating-point noise, not a price change.
	CommitEpsilon = 0.01

	// DeepDiscountRatio is the final/original price ratio below which a
	// discount is flagged as suspiciously deep.
	DeepDiscountRatio = 0.1
)

// Round2 rounds to 2 decimal places, half away from zero. Currency
// comparisons downstream depend on this rounding being stable.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FinalPrice applies a discount to price. Percentage discounts subtract
// price*value/100, fixed discounts subtract value directly. The result
// is floored at 0 and rounded to 2 decimals.
func FinalPrice(price float64, discountType models.DiscountType, discountValue float64) float64 {
	if discountValue <= 0 {
		return Round2(price)
	}
	var final float64
	switch discountType {
	case models.DiscountFixed:
		final = price - discountValue
	default:
		final = price - price*discountValue/100
	}
	if final < 0 {
		final = 0
	}
	return Round2(final)
}

// Margin computes the profit margin percentage of sellingPrice over
// purchasePrice, rounded to 2 decimals. Zero when either input is not
// positive.
func Margin(sellingPrice, purchasePrice float64) float64 {
	if purchasePrice <= 0 || sellingPrice <= 0 {
		return 0
	}
	return Round2((sellingPrice - purchasePrice) / purchasePrice * 100)
}

// MinSellingPrice is the lowest price that still clears the minimum
// margin floor over cost. Zero when purchasePrice is not positive.
func MinSellingPrice(purchasePrice float64) float64 {
	if purchasePrice <= 0 {
		return 0
	}
	return Round2(purchasePrice * MinMarginMultiplier)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DiscountAmount is the absolute currency reduction a discount yields
// on price. This is the canonical comparison basis when merging
// discounts of mixed types.
func DiscountAmount(price float64, discountType models.DiscountType, discountValue float64) float64 {
	return Round2(price - FinalPrice(price, discountType, discountValue))
}
