package pricing

import (
	"fmt"
	"time"

	"pricing-service/internal/models"
)

// DetectOfferConflicts scans same-category products for promotional
// conflicts with the candidate. Conflicts block the change; warnings
// are advisory and left to the operator. excludeID removes the
// candidate's own stored record from the scan.
func DetectOfferConflicts(candidate *models.Product, catalog []models.Product, excludeID int64) *models.ConflictReport {
	report := &models.ConflictReport{}

	candidateDiscounted := candidate.DiscountValue > 0

	if candidateDiscounted {
		switch candidate.DiscountType {
		case models.DiscountFixed:
			if candidate.DiscountValue >= candidate.Price {
				report.Conflicts = append(report.Conflicts, models.ConflictRecord{
					Type:      models.ConflictInvalidDiscount,
					ProductID: candidate.ID,
					Details:   fmt.Sprintf("fixed discount %.2f is not below price %.2f", candidate.DiscountValue, candidate.Price),
				})
			}
		default:
			if candidate.DiscountValue > MaxPercentageDiscount {
				report.Conflicts = append(report.Conflicts, models.ConflictRecord{
					Type:      models.ConflictExcessiveDiscount,
					ProductID: candidate.ID,
					Details:   fmt.Sprintf("percentage discount %.2f%% exceeds the %.0f%% maximum", candidate.DiscountValue, MaxPercentageDiscount),
				})
			}
		}

		final := FinalPrice(candidate.Price, candidate.DiscountType, candidate.DiscountValue)
		if candidate.PurchasePrice > 0 {
			if m := Margin(final, candidate.PurchasePrice); m < MinMarginPct {
				report.Conflicts = append(report.Conflicts, models.ConflictRecord{
					Type:      models.ConflictLowProfitMargin,
					ProductID: candidate.ID,
					Details:   fmt.Sprintf("discount leaves a %.2f%% margin, below the %.0f%% minimum", m, MinMarginPct),
				})
			}
		}
		if candidate.Price > 0 && final < candidate.Price*DeepDiscountRatio {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("final price %.2f is below 10%% of the original %.2f", final, candidate.Price))
		}
	}

	for i := range catalog {
		other := &catalog[i]
		if other.ID == excludeID || other.ID == candidate.ID {
			continue
		}
		if other.Category != candidate.Category {
			continue
		}
		if !candidateDiscounted || other.DiscountValue <= 0 {
			continue
		}

		if windowsOverlap(candidate, other) {
			report.Conflicts = append(report.Conflicts, models.ConflictRecord{
				Type:      models.ConflictOverlappingDates,
				ProductID: other.ID,
				Details:   fmt.Sprintf("discount window overlaps with %q in category %q", other.Name, other.Category),
			})
		}

		if other.DiscountPriority == candidate.DiscountPriority {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%q shares discount priority %d in category %q", other.Name, other.DiscountPriority, other.Category))
		}
	}

	return report
}

// windowsOverlap reports whether two defined discount windows
// intersect: [s1,e1] and [s2,e2] overlap iff s1 <= e2 && s2 <= e1.
// Products without a full window are never compared.
func windowsOverlap(a, b *models.Product) bool {
	if a.DiscountStartDate == nil || a.DiscountEndDate == nil {
		return false
	}
	if b.DiscountStartDate == nil || b.DiscountEndDate == nil {
		return false
	}
	return !a.DiscountStartDate.After(*b.DiscountEndDate) &&
		!b.DiscountStartDate.After(*a.DiscountEndDate)
}

// mergeWinner decides which discount survives a merge: the one with
// the larger absolute currency reduction on the current pre-discount
// price. Ties keep the existing discount.
func mergeWinner(price float64, existingType models.DiscountType, existingValue float64, proposed *models.DiscountChange) bool {
	existing := DiscountAmount(price, existingType, existingValue)
	incoming := DiscountAmount(price, proposed.Type, proposed.Value)
	return incoming > existing
}

// MergeKeepsProposed reports whether the proposed discount replaces the
// product's current one under the merge policy at time t. A product
// without an active discount always takes the proposed one.
func MergeKeepsProposed(p *models.Product, proposed *models.DiscountChange, t time.Time) bool {
	if !p.HasDiscount(t) {
		return true
	}
	return mergeWinner(p.Price, p.DiscountType, p.DiscountValue, proposed)
}
