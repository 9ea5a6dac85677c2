package pricing

import (
	"testing"

	"pricing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestValidateProductFields(t *testing.T) {
	valid := &models.Product{Name: "Widget", Price: 100, Stock: 5}
	assert.NoError(t, ValidateProductFields(valid))

	tests := []struct {
		name    string
		product models.Product
		field   string
	}{
		{"missing name", models.Product{Price: 100, Stock: 5}, "name"},
		{"zero price", models.Product{Name: "Widget", Stock: 5}, "price"},
		{"negative price", models.Product{Name: "Widget", Price: -10, Stock: 5}, "price"},
		{"negative stock", models.Product{Name: "Widget", Price: 100, Stock: -1}, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProductFields(&tt.product)
			require.Error(t, err)
			var fieldErr *models.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestValidateProfitRules(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		rule    string // empty means valid
	}{
		{
			"healthy margin",
			models.Product{Name: "A", Price: 100, PurchasePrice: 80},
			"",
		},
		{
			"no purchase price",
			models.Product{Name: "A", Price: 100},
			"",
		},
		{
			"price above ceiling",
			models.Product{Name: "A", Price: 150000},
			"price_bounds",
		},
		{
			"price below floor",
			models.Product{Name: "A", Price: 0.5},
			"price_bounds",
		},
		{
			"price not above cost",
			models.Product{Name: "A", Price: 80, PurchasePrice: 80},
			"price_above_cost",
		},
		{
			"margin below minimum",
			models.Product{Name: "A", Price: 50, PurchasePrice: 48},
			"min_margin",
		},
		{
			"percentage discount above maximum",
			models.Product{Name: "A", Price: 100, DiscountType: models.DiscountPercentage, DiscountValue: 95},
			"discount_bounds",
		},
		{
			"fixed discount not below price",
			models.Product{Name: "A", Price: 100, DiscountType: models.DiscountFixed, DiscountValue: 100},
			"discount_bounds",
		},
		{
			"discount erodes margin",
			models.Product{Name: "A", Price: 100, PurchasePrice: 80, DiscountType: models.DiscountPercentage, DiscountValue: 18},
			"min_margin",
		},
		{
			"discounted price below cost",
			models.Product{Name: "A", Price: 100, PurchasePrice: 80, DiscountType: models.DiscountFixed, DiscountValue: 30},
			"discounted_price_above_cost",
		},
		{
			"discount keeps healthy margin",
			models.Product{Name: "A", Price: 100, PurchasePrice: 80, DiscountType: models.DiscountPercentage, DiscountValue: 10},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfitRules(&tt.product)
			if tt.rule == "" {
				assert.NoError(t, err)
				return
			}
			var ruleErr *models.RuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, tt.rule, ruleErr.Rule)
		})
	}
}

func TestValidateProfitRulesScenarioMessage(t *testing.T) {
	err := ValidateProfitRules(&models.Product{Name: "A", Price: 50, PurchasePrice: 48})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4.17%")
}

func TestValidateBulkRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.BulkUpdateRequest
		wantErr bool
	}{
		{
			"valid percentage",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyPercentage, Value: f64(10)}},
			false,
		},
		{
			"valid fixed",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(-5)}},
			false,
		},
		{
			"valid range",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyRange, MinPrice: f64(50), MaxPrice: f64(80)}},
			false,
		},
		{
			"percentage without value",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyPercentage}},
			true,
		},
		{
			"range missing max",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyRange, MinPrice: f64(50)}},
			true,
		},
		{
			"range min not below max",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: models.StrategyRange, MinPrice: f64(80), MaxPrice: f64(80)}},
			true,
		},
		{
			"unknown strategy",
			models.BulkUpdateRequest{Pricing: &models.PricingChange{Strategy: "halve", Value: f64(2)}},
			true,
		},
		{
			"neither change set",
			models.BulkUpdateRequest{},
			true,
		},
		{
			"both changes set",
			models.BulkUpdateRequest{
				Pricing:  &models.PricingChange{Strategy: models.StrategyFixed, Value: f64(1)},
				Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 10, Resolution: models.ResolutionSkip},
			},
			true,
		},
		{
			"valid discount",
			models.BulkUpdateRequest{Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 10, Resolution: models.ResolutionMerge}},
			false,
		},
		{
			"discount without value",
			models.BulkUpdateRequest{Discount: &models.DiscountChange{Type: models.DiscountPercentage, Resolution: models.ResolutionSkip}},
			true,
		},
		{
			"discount with unknown resolution",
			models.BulkUpdateRequest{Discount: &models.DiscountChange{Type: models.DiscountPercentage, Value: 10, Resolution: "ask"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBulkRequest(&tt.req)
			if tt.wantErr {
				var reqErr *models.RequestError
				require.ErrorAs(t, err, &reqErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
