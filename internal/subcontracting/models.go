package subcontracting

import (
	"time"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// Default pricing floor when a subcontractor carries no negotiated rates.
const (
	DefaultRatePerKm   = 2.0
	DefaultRatePerHour = 40.0
)

// Availability is the current operational state of a subcontractor.
type Availability string

const (
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityBusy      Availability = "BUSY"
	AvailabilityOffline   Availability = "OFFLINE"
)

// Subcontractor is an external operator that can take over a mission.
type Subcontractor struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	IsActive       bool      `json:"is_active" db:"is_active"`

	// Empty means the subcontractor serves any category.
	VehicleCategoryIDs []uuid.UUID `json:"vehicle_category_ids,omitempty"`

	OperatingZoneIDs []uuid.UUID `json:"operating_zone_ids,omitempty"`
	AllZones         bool        `json:"all_zones" db:"all_zones"`

	RatePerKm   *float64 `json:"rate_per_km,omitempty" db:"rate_per_km"`
	RatePerHour *float64 `json:"rate_per_hour,omitempty" db:"rate_per_hour"`
	MinimumFare *float64 `json:"minimum_fare,omitempty" db:"minimum_fare"`

	Availability Availability `json:"availability" db:"availability"`
	AvgRating    float64      `json:"avg_rating" db:"avg_rating"`
}

// Recommendation is the outcome of comparing subcontracting against running
// the mission internally.
type Recommendation string

const (
	RecommendSubcontract Recommendation = "SUBCONTRACT"
	RecommendInternal    Recommendation = "INTERNAL"
	RecommendReview      Recommendation = "REVIEW"
)

// Candidate is a scored subcontractor for a given mission.
type Candidate struct {
	Subcontractor  Subcontractor  `json:"subcontractor"`
	SuggestedPrice float64        `json:"suggested_price"`
	ZoneScore      int            `json:"zone_score"`
	MatchScore     float64        `json:"match_score"`
	Margin         float64        `json:"margin"`
	Recommendation Recommendation `json:"recommendation"`
}

// MissionProfile describes the trip being considered for subcontracting.
type MissionProfile struct {
	PickupZoneIDs     []uuid.UUID `json:"pickup_zone_ids"`
	DropoffZoneIDs    []uuid.UUID `json:"dropoff_zone_ids"`
	VehicleCategoryID uuid.UUID   `json:"vehicle_category_id"`
	DistanceKm        float64     `json:"distance_km"`
	DurationHours     float64     `json:"duration_hours"`
	SellingPrice      float64     `json:"selling_price"`
	InternalCost      float64     `json:"internal_cost"`
	MarginPercent     float64     `json:"margin_percent"`
}

// EmptyLegStatus reflects how much of the return window remains.
type EmptyLegStatus string

const (
	EmptyLegAvailable    EmptyLegStatus = "AVAILABLE"
	EmptyLegExpiringSoon EmptyLegStatus = "EXPIRING_SOON"
	EmptyLegExpired      EmptyLegStatus = "EXPIRED"
)

// EmptyLeg is a vehicle's return-to-base window during which a discounted
// booking can be offered.
type EmptyLeg struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	VehicleID      uuid.UUID `json:"vehicle_id" db:"vehicle_id"`

	From geo.Point `json:"from"`
	To   geo.Point `json:"to"`

	WindowStart time.Time `json:"window_start" db:"window_start"`
	WindowEnd   time.Time `json:"window_end" db:"window_end"`

	MaxMatchDistanceKm float64 `json:"max_match_distance_km" db:"max_match_distance_km"`
	IsActive           bool    `json:"is_active" db:"is_active"`
}
