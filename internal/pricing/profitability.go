package pricing

import (
	"github.com/chauffio/chauffio/internal/costing"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/config"
)

// ClassifyProfitability maps a margin percentage to the traffic light.
// Thresholds come from organization settings when configured, process
// defaults otherwise. Both boundaries are inclusive.
func ClassifyProfitability(marginPercent float64, settings *costing.OrganizationPricingSettings, defaults config.PricingConfig) ProfitabilityData {
	green := defaults.GreenMarginThresholdPct
	orange := defaults.OrangeMarginThresholdPct
	if settings != nil {
		if settings.GreenMarginThresholdPercent != nil {
			green = *settings.GreenMarginThresholdPercent
		}
		if settings.OrangeMarginThresholdPercent != nil {
			orange = *settings.OrangeMarginThresholdPercent
		}
	}

	indicator := ProfitabilityRed
	switch {
	case marginPercent >= green:
		indicator = ProfitabilityGreen
	case marginPercent >= orange:
		indicator = ProfitabilityOrange
	}

	return ProfitabilityData{
		Indicator:       indicator,
		MarginPercent:   common.Round2(marginPercent),
		GreenThreshold:  green,
		OrangeThreshold: orange,
	}
}

// Commission derives the effective margin under a partner commission. A zero
// commission yields nil and the gross margin stands.
func Commission(price, cost, commissionPercent float64) *CommissionData {
	if commissionPercent == 0 {
		return nil
	}

	amount := common.Round2(price * commissionPercent / 100)
	effectiveMargin := common.Round2(price - cost - amount)
	return &CommissionData{
		CommissionPercent:      commissionPercent,
		CommissionAmount:       amount,
		EffectiveMargin:        effectiveMargin,
		EffectiveMarginPercent: common.Round2(common.SafePercent(effectiveMargin, price)),
	}
}
