package pricing

import (
	"time"

	"github.com/chauffio/chauffio/internal/costing"
	"github.com/chauffio/chauffio/internal/grids"
	"github.com/chauffio/chauffio/internal/rates"
	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// Mode says whether a price came from a contract grid or the dynamic
// formula.
type Mode string

const (
	ModeFixedGrid Mode = "FIXED_GRID"
	ModeDynamic   Mode = "DYNAMIC"
)

// FallbackReason explains why the dynamic path was taken.
type FallbackReason string

const (
	FallbackPrivateClient    FallbackReason = "PRIVATE_CLIENT"
	FallbackNoContract       FallbackReason = "NO_CONTRACT"
	FallbackNoZoneMatch      FallbackReason = "NO_ZONE_MATCH"
	FallbackNoRouteMatch     FallbackReason = "NO_ROUTE_MATCH"
	FallbackNoExcursionMatch FallbackReason = "NO_EXCURSION_MATCH"
	FallbackNoDispoMatch     FallbackReason = "NO_DISPO_MATCH"
)

// RateSource says which rate pair drove the dynamic base formula.
type RateSource string

const (
	RateSourceCategory     RateSource = "CATEGORY"
	RateSourceOrganization RateSource = "ORGANIZATION"
)

// ProfitabilityIndicator is the traffic-light margin classification.
type ProfitabilityIndicator string

const (
	ProfitabilityGreen  ProfitabilityIndicator = "green"
	ProfitabilityOrange ProfitabilityIndicator = "orange"
	ProfitabilityRed    ProfitabilityIndicator = "red"
)

// ProfitabilityData carries the indicator and the thresholds it was
// evaluated against.
type ProfitabilityData struct {
	Indicator       ProfitabilityIndicator `json:"indicator"`
	MarginPercent   float64                `json:"margin_percent"`
	GreenThreshold  float64                `json:"green_threshold"`
	OrangeThreshold float64                `json:"orange_threshold"`
}

// CommissionData is present for partner quotes with a non-zero commission.
type CommissionData struct {
	CommissionPercent      float64 `json:"commission_percent"`
	CommissionAmount       float64 `json:"commission_amount"`
	EffectiveMargin        float64 `json:"effective_margin"`
	EffectiveMarginPercent float64 `json:"effective_margin_percent"`
}

// Request is the pricing entry point payload.
type Request struct {
	ContactID         uuid.UUID      `json:"contact_id" binding:"required"`
	Pickup            geo.Point      `json:"pickup" binding:"required"`
	Dropoff           geo.Point      `json:"dropoff" binding:"required"`
	VehicleCategoryID uuid.UUID      `json:"vehicle_category_id" binding:"required"`
	TripType          grids.TripType `json:"trip_type" binding:"required"`

	PickupAt                 *time.Time `json:"pickup_at,omitempty"`
	EstimatedDistanceKm      *float64   `json:"estimated_distance_km,omitempty"`
	EstimatedDurationMinutes *float64   `json:"estimated_duration_minutes,omitempty"`
}

// Result is the fully annotated pricing outcome. It is persisted as a
// snapshot on quotes, so field names are part of the stored format.
type Result struct {
	Mode  Mode    `json:"mode"`
	Price float64 `json:"price"`

	InternalCost  float64 `json:"internal_cost"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`

	Profitability ProfitabilityData `json:"profitability"`

	MatchedGrid  *grids.Match         `json:"matched_grid,omitempty"`
	AppliedRules []rates.AppliedRule  `json:"applied_rules"`
	GridSearch   *grids.SearchDetails `json:"grid_search,omitempty"`

	IsContractPrice bool           `json:"is_contract_price"`
	FallbackReason  FallbackReason `json:"fallback_reason,omitempty"`

	RateSource        RateSource `json:"rate_source,omitempty"`
	UsedCategoryRates bool       `json:"used_category_rates"`

	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`

	TripAnalysis costing.TripAnalysis `json:"trip_analysis"`
	Commission   *CommissionData      `json:"commission,omitempty"`

	OverrideApplied bool     `json:"override_applied,omitempty"`
	PreviousPrice   *float64 `json:"previous_price,omitempty"`

	PickupZone  *zones.Zone `json:"pickup_zone,omitempty"`
	DropoffZone *zones.Zone `json:"dropoff_zone,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`
}
