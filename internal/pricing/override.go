package pricing

import (
	"fmt"
	"time"

	"github.com/chauffio/chauffio/internal/rates"
	"github.com/chauffio/chauffio/pkg/common"
)

// ApplyPriceOverride replaces the computed price with a manual one, guarded
// by an optional margin floor. On success the result is mutated in place:
// price, margin and profitability are recomputed and a MANUAL_OVERRIDE rule
// is appended.
func ApplyPriceOverride(result *Result, newPrice float64, reason string, minimumMarginPercent *float64, engineCtx EngineContext) error {
	if newPrice <= 0 {
		return common.NewUnprocessableError(common.CodeInvalidPrice,
			"override price must be positive")
	}

	newPrice = common.Round2(newPrice)
	newMargin := common.Round2(newPrice - result.InternalCost)
	newMarginPercent := common.Round2(common.SafePercent(newMargin, newPrice))

	if minimumMarginPercent != nil && newMarginPercent < *minimumMarginPercent {
		return common.NewUnprocessableError(common.CodeBelowMinimumMargin,
			fmt.Sprintf("override margin %.2f%% is below the %.2f%% floor",
				newMarginPercent, *minimumMarginPercent))
	}

	previousPrice := result.Price
	priceChange := common.Round2(newPrice - previousPrice)

	result.AppliedRules = append(result.AppliedRules, rates.AppliedRule{
		Type:        rates.RuleManualOverride,
		Label:       "Manual override",
		PriceBefore: previousPrice,
		PriceAfter:  newPrice,
		Details: map[string]interface{}{
			"previous_price":             previousPrice,
			"new_price":                  newPrice,
			"price_change":               priceChange,
			"price_change_percent":       common.Round2(common.SafePercent(priceChange, previousPrice)),
			"reason":                     reason,
			"overridden_at":              time.Now().UTC().Format(time.RFC3339),
			"is_contract_price_override": result.IsContractPrice,
		},
	})

	result.Price = newPrice
	result.Margin = newMargin
	result.MarginPercent = newMarginPercent
	result.OverrideApplied = true
	result.PreviousPrice = &previousPrice

	marginForIndicator := newMarginPercent
	if result.Commission != nil {
		if c := Commission(newPrice, result.InternalCost, result.Commission.CommissionPercent); c != nil {
			result.Commission = c
			marginForIndicator = c.EffectiveMarginPercent
		}
	}
	result.Profitability = ClassifyProfitability(marginForIndicator, engineCtx.Settings, engineCtx.Defaults)
	return nil
}
