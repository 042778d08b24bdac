package pricing

import (
	"time"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/costing"
	"github.com/chauffio/chauffio/internal/grids"
	"github.com/chauffio/chauffio/internal/rates"
	"github.com/chauffio/chauffio/internal/vehicles"
	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/config"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// EngineContext carries everything the pure pricing engine needs. The
// service layer assembles it from repositories so the engine itself stays
// free of I/O.
type EngineContext struct {
	Contact  *contacts.Contact
	Zones    []zones.Zone
	Category *vehicles.Category
	Settings *costing.OrganizationPricingSettings

	// ZoneIndex prefilters Zones for point classification when set.
	ZoneIndex *zones.SpatialIndex

	AdvancedRates       []rates.AdvancedRate
	SeasonalMultipliers []rates.SeasonalMultiplier

	Strategy         zones.ConflictStrategy
	VehicleSelection *costing.VehicleSelectionInput
	RealToll         *costing.RealToll

	Defaults config.PricingConfig
	Now      time.Time
}

// classifyAll resolves the zones containing a point, going through the
// spatial index when one was provided.
func (engineCtx EngineContext) classifyAll(p geo.Point) []zones.Zone {
	zoneSet := engineCtx.Zones
	if engineCtx.ZoneIndex != nil {
		zoneSet = engineCtx.ZoneIndex.Candidates(p)
	}
	return zones.ClassifyPointAll(p, zoneSet, engineCtx.Strategy)
}

// Compute runs the pricing algorithm: classify zones, try the partner grid,
// fall back to the dynamic formula, then cost and classify profitability.
func Compute(req Request, engineCtx EngineContext) *Result {
	distanceKm, durationMinutes := resolveTripSize(req, engineCtx.Defaults)

	result := &Result{
		Mode:            ModeDynamic,
		DistanceKm:      common.Round2(distanceKm),
		DurationMinutes: durationMinutes,
		CalculatedAt:    engineCtx.Now,
	}

	pickupMatches := engineCtx.classifyAll(req.Pickup)
	dropoffMatches := engineCtx.classifyAll(req.Dropoff)
	if len(pickupMatches) > 0 {
		z := pickupMatches[0]
		result.PickupZone = &z
	}
	if len(dropoffMatches) > 0 {
		z := dropoffMatches[0]
		result.DropoffZone = &z
	}
	result.AppliedRules = append(result.AppliedRules, zoneMappingRule(result.PickupZone, result.DropoffZone))

	switch {
	case !engineCtx.Contact.IsPartner:
		result.FallbackReason = FallbackPrivateClient
	case engineCtx.Contact.PartnerContract == nil:
		result.FallbackReason = FallbackNoContract
	default:
		if done := tryGrid(req, engineCtx, result, pickupMatches, dropoffMatches, distanceKm, durationMinutes); done {
			finishResult(result, engineCtx)
			return result
		}
	}

	computeDynamic(req, engineCtx, result, distanceKm, durationMinutes)
	finishResult(result, engineCtx)
	return result
}

func resolveTripSize(req Request, defaults config.PricingConfig) (float64, float64) {
	distanceKm := defaults.DefaultDistanceKm
	if req.EstimatedDistanceKm != nil && *req.EstimatedDistanceKm > 0 {
		distanceKm = *req.EstimatedDistanceKm
	}
	durationMinutes := float64(defaults.DefaultDurationMinutes)
	if req.EstimatedDurationMinutes != nil && *req.EstimatedDurationMinutes > 0 {
		durationMinutes = *req.EstimatedDurationMinutes
	}
	return distanceKm, durationMinutes
}

func zoneMappingRule(pickup, dropoff *zones.Zone) rates.AppliedRule {
	details := map[string]interface{}{}
	if pickup != nil {
		details["pickup_zone"] = pickup.Code
	}
	if dropoff != nil {
		details["dropoff_zone"] = dropoff.Code
	}
	return rates.AppliedRule{
		Type:    rates.RuleZoneMapping,
		Label:   "Zone mapping",
		Details: details,
	}
}

// tryGrid evaluates the partner grid for the trip type. It returns true
// when a grid entry priced the trip.
func tryGrid(req Request, engineCtx EngineContext, result *Result, pickupMatches, dropoffMatches []zones.Zone, distanceKm, durationMinutes float64) bool {
	contract := engineCtx.Contact.PartnerContract
	gridReq := grids.Request{
		Pickup:            req.Pickup,
		Dropoff:           req.Dropoff,
		PickupZoneIDs:     zoneIDs(pickupMatches),
		DropoffZoneIDs:    zoneIDs(dropoffMatches),
		VehicleCategoryID: req.VehicleCategoryID,
		TripType:          req.TripType,
		DurationHours:     durationMinutes / 60,
		DistanceKm:        distanceKm,
	}

	details := &grids.SearchDetails{}
	var match *grids.Match

	switch req.TripType {
	case grids.TripTransfer:
		if len(pickupMatches) == 0 && len(dropoffMatches) == 0 && !hasAddressRoutes(contract.RouteAssignments) {
			result.FallbackReason = FallbackNoZoneMatch
			return false
		}
		match, details.RoutesChecked = grids.MatchRoutes(gridReq, contract.RouteAssignments)
		if match == nil {
			result.FallbackReason = FallbackNoRouteMatch
		}
	case grids.TripExcursion:
		match, details.ExcursionsChecked = grids.MatchExcursions(gridReq, contract.ExcursionAssignments)
		if match == nil {
			result.FallbackReason = FallbackNoExcursionMatch
		}
	case grids.TripDispo:
		match, details.DisposChecked = grids.MatchDispos(gridReq, contract.DispoAssignments)
		if match == nil {
			result.FallbackReason = FallbackNoDispoMatch
		}
	default:
		result.FallbackReason = FallbackNoRouteMatch
		return false
	}

	result.GridSearch = details
	if match == nil {
		return false
	}

	ruleType := rates.RuleCatalogPrice
	label := "Catalog price"
	if match.IsOverride {
		ruleType = rates.RulePartnerOverridePrice
		label = "Partner negotiated price"
	}
	result.Mode = ModeFixedGrid
	result.MatchedGrid = match
	result.IsContractPrice = true
	result.Price = match.EffectivePrice
	result.FallbackReason = ""
	result.AppliedRules = append(result.AppliedRules, rates.AppliedRule{
		Type:        ruleType,
		Label:       label,
		PriceBefore: match.CatalogPrice,
		PriceAfter:  match.EffectivePrice,
		Details: map[string]interface{}{
			"entry_id":   match.EntryID.String(),
			"entry_name": match.EntryName,
			"kind":       string(match.Kind),
		},
	})
	return true
}

func hasAddressRoutes(assignments []grids.RouteAssignment) bool {
	for i := range assignments {
		r := &assignments[i].Route
		if r.Origin != nil && r.Origin.Type == grids.EndpointAddress {
			return true
		}
		if r.Destination != nil && r.Destination.Type == grids.EndpointAddress {
			return true
		}
	}
	return false
}

func zoneIDs(matches []zones.Zone) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(matches))
	for _, z := range matches {
		ids = append(ids, z.ID)
	}
	return ids
}

// computeDynamic prices the trip by formula: the larger of the distance and
// hourly rates, margin, then zone, advanced and seasonal adjustments.
func computeDynamic(req Request, engineCtx EngineContext, result *Result, distanceKm, durationMinutes float64) {
	ratePerKm := engineCtx.Defaults.DefaultRatePerKm
	ratePerHour := engineCtx.Defaults.DefaultRatePerHour
	if engineCtx.Settings != nil {
		if engineCtx.Settings.BaseRatePerKm != nil {
			ratePerKm = *engineCtx.Settings.BaseRatePerKm
		}
		if engineCtx.Settings.BaseRatePerHour != nil {
			ratePerHour = *engineCtx.Settings.BaseRatePerHour
		}
	}

	result.RateSource = RateSourceOrganization
	if engineCtx.Category != nil && engineCtx.Category.HasOwnRates() {
		ratePerKm = *engineCtx.Category.DefaultRatePerKm
		ratePerHour = *engineCtx.Category.DefaultRatePerHour
		result.RateSource = RateSourceCategory
		result.UsedCategoryRates = true
	}

	durationHours := durationMinutes / 60
	byDistance := distanceKm * ratePerKm
	byDuration := durationHours * ratePerHour
	basePrice := byDistance
	if byDuration > basePrice {
		basePrice = byDuration
	}
	basePrice = common.Round2(basePrice)

	result.AppliedRules = append(result.AppliedRules, rates.AppliedRule{
		Type:       rates.RuleBaseFormula,
		Label:      "Base formula",
		PriceAfter: basePrice,
		Details: map[string]interface{}{
			"rate_per_km":   ratePerKm,
			"rate_per_hour": ratePerHour,
			"by_distance":   common.Round2(byDistance),
			"by_duration":   common.Round2(byDuration),
			"rate_source":   string(result.RateSource),
		},
	})

	price := basePrice

	// The category multiplier only applies on organization rates. A
	// category carrying its own rate pair already expresses its premium.
	if engineCtx.Category != nil && !result.UsedCategoryRates && engineCtx.Category.Multiplier() != 1.0 {
		before := price
		price = common.Round2(price * engineCtx.Category.Multiplier())
		result.AppliedRules = append(result.AppliedRules, rates.AppliedRule{
			Type:        rates.RuleCategoryMultiplier,
			Label:       engineCtx.Category.Name,
			PriceBefore: before,
			PriceAfter:  price,
			Details: map[string]interface{}{
				"multiplier": engineCtx.Category.Multiplier(),
			},
		})
	}

	targetMargin := engineCtx.Defaults.DefaultTargetMarginPct
	if engineCtx.Settings != nil && engineCtx.Settings.TargetMarginPercent != nil {
		targetMargin = *engineCtx.Settings.TargetMarginPercent
	}
	price = common.Round2(price * (1 + targetMargin/100))

	if newPrice, rule := rates.ApplyZoneMultiplier(price, result.PickupZone, result.DropoffZone); rule != nil {
		price = newPrice
		result.AppliedRules = append(result.AppliedRules, *rule)
	}

	pickupAt := engineCtx.Now
	if req.PickupAt != nil {
		pickupAt = *req.PickupAt
	}
	pickupAt = pickupAt.In(engineCtx.Defaults.Location())

	var ruleList []rates.AppliedRule
	price, ruleList = rates.ApplyAdvancedRates(price, engineCtx.AdvancedRates, pickupAt)
	result.AppliedRules = append(result.AppliedRules, ruleList...)

	price, ruleList = rates.ApplySeasonalMultipliers(price, engineCtx.SeasonalMultipliers, pickupAt)
	result.AppliedRules = append(result.AppliedRules, ruleList...)

	result.Price = price
}

// finishResult computes the shadow cost, margin, commission and
// profitability for an already priced result.
func finishResult(result *Result, engineCtx EngineContext) {
	settings := engineCtx.Settings
	if settings == nil {
		settings = &costing.OrganizationPricingSettings{}
	}

	result.TripAnalysis = costing.Shadow(result.DistanceKm, result.DurationMinutes, settings, engineCtx.VehicleSelection, engineCtx.RealToll)
	result.InternalCost = result.TripAnalysis.TotalInternalCost
	result.Margin = common.Round2(result.Price - result.InternalCost)
	result.MarginPercent = common.Round2(common.SafePercent(result.Margin, result.Price))

	marginForIndicator := result.MarginPercent
	if engineCtx.Contact != nil && engineCtx.Contact.PartnerContract != nil {
		if c := Commission(result.Price, result.InternalCost, engineCtx.Contact.PartnerContract.CommissionPercent); c != nil {
			result.Commission = c
			marginForIndicator = c.EffectiveMarginPercent
		}
	}

	result.Profitability = ClassifyProfitability(marginForIndicator, settings, engineCtx.Defaults)
}
