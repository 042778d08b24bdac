package rates

import (
	"time"

	"github.com/google/uuid"
)

// RateType discriminates the trigger of an advanced rate.
type RateType string

const (
	RateNight   RateType = "NIGHT"
	RateWeekend RateType = "WEEKEND"
)

// AdjustmentType says how an advanced rate modifies the price.
type AdjustmentType string

const (
	AdjustmentPercentage  AdjustmentType = "PERCENTAGE"
	AdjustmentFixedAmount AdjustmentType = "FIXED_AMOUNT"
)

// AdvancedRate is a time-conditional price adjustment (night surcharge,
// weekend surcharge).
type AdvancedRate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AppliesTo RateType  `json:"applies_to" db:"applies_to"`

	// StartTime and EndTime are wall-clock HH:MM. An overnight window
	// (start after end, like 22:00-06:00) wraps midnight.
	StartTime string `json:"start_time" db:"start_time"`
	EndTime   string `json:"end_time" db:"end_time"`

	// DaysOfWeek is a comma-separated list, 0=Sunday..6=Saturday. Empty
	// means the weekend default {0,6}.
	DaysOfWeek string `json:"days_of_week,omitempty" db:"days_of_week"`

	AdjustmentType AdjustmentType `json:"adjustment_type" db:"adjustment_type"`
	Value          float64        `json:"value" db:"value"`
	Priority       int            `json:"priority" db:"priority"`
	IsActive       bool           `json:"is_active" db:"is_active"`
}

// SeasonalMultiplier scales prices inside a date window, both ends
// inclusive.
type SeasonalMultiplier struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	Multiplier float64   `json:"multiplier" db:"multiplier"`
	Priority   int       `json:"priority" db:"priority"`
	IsActive   bool      `json:"is_active" db:"is_active"`
}

// RuleType tags an entry of the applied-rules audit trail. These values are
// persisted on quotes and must stay stable.
type RuleType string

const (
	RuleZoneMapping          RuleType = "ZONE_MAPPING"
	RuleZoneMultiplier       RuleType = "ZONE_MULTIPLIER"
	RuleBaseFormula          RuleType = "BASE_FORMULA"
	RuleCategoryMultiplier   RuleType = "CATEGORY_MULTIPLIER"
	RuleAdvancedRate         RuleType = "ADVANCED_RATE"
	RuleSeasonalMultiplier   RuleType = "SEASONAL_MULTIPLIER"
	RuleCatalogPrice         RuleType = "CATALOG_PRICE"
	RulePartnerOverridePrice RuleType = "PARTNER_OVERRIDE_PRICE"
	RuleManualOverride       RuleType = "MANUAL_OVERRIDE"
)

// AppliedRule records one pricing step for audit. Details carries the
// rule-specific payload; its keys are part of the persisted format.
type AppliedRule struct {
	Type        RuleType               `json:"type"`
	Label       string                 `json:"label"`
	PriceBefore float64                `json:"price_before"`
	PriceAfter  float64                `json:"price_after"`
	Details     map[string]interface{} `json:"details,omitempty"`
}
