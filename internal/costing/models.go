package costing

// Cost parameter defaults, applied when the organization leaves a field unset.
const (
	DefaultFuelConsumptionL100 = 8.0
	DefaultFuelPricePerLiter   = 1.80
	DefaultTollCostPerKm       = 0.15
	DefaultWearCostPerKm       = 0.10
	DefaultDriverHourlyCost    = 25.0
)

// TollSource says where a toll amount came from.
type TollSource string

const (
	TollSourceGoogleAPI TollSource = "GOOGLE_API"
	TollSourceEstimate  TollSource = "ESTIMATE"
)

// RoutingSource says how trip distance and duration were obtained.
type RoutingSource string

const (
	RoutingSourceGoogleAPI         RoutingSource = "GOOGLE_API"
	RoutingSourceHaversineEstimate RoutingSource = "HAVERSINE_ESTIMATE"
	RoutingSourceVehicleSelection  RoutingSource = "VEHICLE_SELECTION"
)

// OrganizationPricingSettings carries an organization's rates and cost
// parameters. Optional fields are pointers so unset values fall back to
// defaults.
type OrganizationPricingSettings struct {
	BaseRatePerKm       *float64 `json:"base_rate_per_km,omitempty"`
	BaseRatePerHour     *float64 `json:"base_rate_per_hour,omitempty"`
	TargetMarginPercent *float64 `json:"target_margin_percent,omitempty"`

	FuelConsumptionL100 *float64 `json:"fuel_consumption_l_100km,omitempty"`
	FuelPricePerLiter   *float64 `json:"fuel_price_per_liter,omitempty"`
	TollCostPerKm       *float64 `json:"toll_cost_per_km,omitempty"`
	WearCostPerKm       *float64 `json:"wear_cost_per_km,omitempty"`
	DriverHourlyCost    *float64 `json:"driver_hourly_cost,omitempty"`

	GreenMarginThresholdPercent  *float64 `json:"green_margin_threshold_percent,omitempty"`
	OrangeMarginThresholdPercent *float64 `json:"orange_margin_threshold_percent,omitempty"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (s *OrganizationPricingSettings) FuelConsumption() float64 {
	return orDefault(s.FuelConsumptionL100, DefaultFuelConsumptionL100)
}

func (s *OrganizationPricingSettings) FuelPrice() float64 {
	return orDefault(s.FuelPricePerLiter, DefaultFuelPricePerLiter)
}

func (s *OrganizationPricingSettings) TollCost() float64 {
	return orDefault(s.TollCostPerKm, DefaultTollCostPerKm)
}

func (s *OrganizationPricingSettings) WearCost() float64 {
	return orDefault(s.WearCostPerKm, DefaultWearCostPerKm)
}

func (s *OrganizationPricingSettings) DriverCost() float64 {
	return orDefault(s.DriverHourlyCost, DefaultDriverHourlyCost)
}

// CostComponent is one line of a cost breakdown.
type CostComponent struct {
	Label       string     `json:"label"`
	Amount      float64    `json:"amount"`
	Rate        float64    `json:"rate,omitempty"`
	Source      TollSource `json:"source,omitempty"`
	IsFromCache bool       `json:"is_from_cache,omitempty"`
	Description string     `json:"description,omitempty"`
}

// CostBreakdown is the full internal cost of driving a distance for a
// duration. Amounts are euros rounded to 2 decimals.
type CostBreakdown struct {
	Fuel    CostComponent  `json:"fuel"`
	Tolls   CostComponent  `json:"tolls"`
	Wear    CostComponent  `json:"wear"`
	Driver  CostComponent  `json:"driver"`
	Parking *CostComponent `json:"parking,omitempty"`
	Total   float64        `json:"total"`
}

// SegmentKind names the three legs of a shadow-costed trip.
type SegmentKind string

const (
	SegmentApproach SegmentKind = "APPROACH"
	SegmentService  SegmentKind = "SERVICE"
	SegmentReturn   SegmentKind = "RETURN"
)

// TripSegment is one leg with its own cost breakdown.
type TripSegment struct {
	Kind            SegmentKind   `json:"kind"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMinutes float64       `json:"duration_minutes"`
	Breakdown       CostBreakdown `json:"breakdown"`
}

// VehicleSelectionInput carries the three legs resolved by dispatch when a
// concrete vehicle was selected for the trip.
type VehicleSelectionInput struct {
	ApproachDistanceKm      float64 `json:"approach_distance_km"`
	ApproachDurationMinutes float64 `json:"approach_duration_minutes"`
	ServiceDistanceKm       float64 `json:"service_distance_km"`
	ServiceDurationMinutes  float64 `json:"service_duration_minutes"`
	ReturnDistanceKm        float64 `json:"return_distance_km"`
	ReturnDurationMinutes   float64 `json:"return_duration_minutes"`
	VehicleID               string  `json:"vehicle_id,omitempty"`
}

// TripAnalysis is the shadow costing of a trip: per-leg breakdowns plus
// aggregate totals.
type TripAnalysis struct {
	Approach *TripSegment `json:"approach,omitempty"`
	Service  TripSegment  `json:"service"`
	Return   *TripSegment `json:"return,omitempty"`

	TotalDistanceKm      float64       `json:"total_distance_km"`
	TotalDurationMinutes float64       `json:"total_duration_minutes"`
	TotalInternalCost    float64       `json:"total_internal_cost"`
	CombinedBreakdown    CostBreakdown `json:"combined_breakdown"`

	RoutingSource RoutingSource `json:"routing_source"`
	FuelPrice     *float64      `json:"fuel_price,omitempty"`
	TollSource    TollSource    `json:"toll_source,omitempty"`
	VehicleID     string        `json:"vehicle_id,omitempty"`
}
