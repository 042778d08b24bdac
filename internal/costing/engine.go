package costing

import "github.com/chauffio/chauffio/pkg/common"

// ParkingInput is an optional passthrough parking cost.
type ParkingInput struct {
	Amount      float64
	Description string
}

// RealToll replaces the flat toll estimate with a provider-sourced amount.
type RealToll struct {
	Amount      float64
	IsFromCache bool
}

// ComputeBreakdown derives the internal cost of a trip leg from the
// organization's cost parameters. All amounts come out rounded to 2 decimals
// and the total is rounded after summing.
func ComputeBreakdown(distanceKm, durationMinutes float64, settings *OrganizationPricingSettings, parking *ParkingInput, realToll *RealToll) CostBreakdown {
	fuel := CostComponent{
		Label:  "Fuel",
		Rate:   settings.FuelPrice(),
		Amount: common.Round2(distanceKm * settings.FuelConsumption() / 100 * settings.FuelPrice()),
	}

	tolls := CostComponent{
		Label:  "Tolls",
		Rate:   settings.TollCost(),
		Source: TollSourceEstimate,
		Amount: common.Round2(distanceKm * settings.TollCost()),
	}
	if realToll != nil {
		tolls.Source = TollSourceGoogleAPI
		tolls.IsFromCache = realToll.IsFromCache
		tolls.Amount = common.Round2(realToll.Amount)
		tolls.Rate = 0
	}

	wear := CostComponent{
		Label:  "Wear",
		Rate:   settings.WearCost(),
		Amount: common.Round2(distanceKm * settings.WearCost()),
	}

	driver := CostComponent{
		Label:  "Driver",
		Rate:   settings.DriverCost(),
		Amount: common.Round2(durationMinutes / 60 * settings.DriverCost()),
	}

	breakdown := CostBreakdown{Fuel: fuel, Tolls: tolls, Wear: wear, Driver: driver}

	total := fuel.Amount + tolls.Amount + wear.Amount + driver.Amount
	if parking != nil {
		p := CostComponent{
			Label:       "Parking",
			Amount:      common.Round2(parking.Amount),
			Description: parking.Description,
		}
		breakdown.Parking = &p
		total += p.Amount
	}
	breakdown.Total = common.Round2(total)
	return breakdown
}

// Shadow builds the trip analysis for a trip. With a vehicle selection the
// trip is costed as approach, service and return legs; without it a single
// service leg covers the whole trip. A provider toll, when present, replaces
// the flat estimate on the service leg.
func Shadow(distanceKm, durationMinutes float64, settings *OrganizationPricingSettings, sel *VehicleSelectionInput, toll *RealToll) TripAnalysis {
	tollSource := TollSourceEstimate
	if toll != nil {
		tollSource = TollSourceGoogleAPI
	}

	if sel == nil {
		service := TripSegment{
			Kind:            SegmentService,
			DistanceKm:      distanceKm,
			DurationMinutes: durationMinutes,
			Breakdown:       ComputeBreakdown(distanceKm, durationMinutes, settings, nil, toll),
		}
		return TripAnalysis{
			Service:              service,
			TotalDistanceKm:      common.Round2(distanceKm),
			TotalDurationMinutes: durationMinutes,
			TotalInternalCost:    service.Breakdown.Total,
			CombinedBreakdown:    service.Breakdown,
			RoutingSource:        RoutingSourceHaversineEstimate,
			TollSource:           tollSource,
		}
	}

	approach := TripSegment{
		Kind:            SegmentApproach,
		DistanceKm:      sel.ApproachDistanceKm,
		DurationMinutes: sel.ApproachDurationMinutes,
		Breakdown:       ComputeBreakdown(sel.ApproachDistanceKm, sel.ApproachDurationMinutes, settings, nil, nil),
	}
	service := TripSegment{
		Kind:            SegmentService,
		DistanceKm:      sel.ServiceDistanceKm,
		DurationMinutes: sel.ServiceDurationMinutes,
		Breakdown:       ComputeBreakdown(sel.ServiceDistanceKm, sel.ServiceDurationMinutes, settings, nil, toll),
	}
	ret := TripSegment{
		Kind:            SegmentReturn,
		DistanceKm:      sel.ReturnDistanceKm,
		DurationMinutes: sel.ReturnDurationMinutes,
		Breakdown:       ComputeBreakdown(sel.ReturnDistanceKm, sel.ReturnDurationMinutes, settings, nil, nil),
	}

	combined := combineBreakdowns(approach.Breakdown, service.Breakdown, ret.Breakdown)
	return TripAnalysis{
		Approach:             &approach,
		Service:              service,
		Return:               &ret,
		TotalDistanceKm:      common.Round2(approach.DistanceKm + service.DistanceKm + ret.DistanceKm),
		TotalDurationMinutes: approach.DurationMinutes + service.DurationMinutes + ret.DurationMinutes,
		TotalInternalCost:    combined.Total,
		CombinedBreakdown:    combined,
		RoutingSource:        RoutingSourceVehicleSelection,
		TollSource:           tollSource,
		VehicleID:            sel.VehicleID,
	}
}

// combineBreakdowns sums amounts across legs. Rate fields are display only
// and taken from the first leg with a non-zero amount for that component.
func combineBreakdowns(breakdowns ...CostBreakdown) CostBreakdown {
	var combined CostBreakdown
	combined.Fuel.Label = "Fuel"
	combined.Tolls.Label = "Tolls"
	combined.Tolls.Source = TollSourceEstimate
	combined.Wear.Label = "Wear"
	combined.Driver.Label = "Driver"

	merge := func(dst *CostComponent, src CostComponent) {
		if dst.Rate == 0 && src.Amount != 0 {
			dst.Rate = src.Rate
			dst.Source = src.Source
			dst.IsFromCache = src.IsFromCache
		}
		dst.Amount = common.Round2(dst.Amount + src.Amount)
	}

	for _, b := range breakdowns {
		merge(&combined.Fuel, b.Fuel)
		merge(&combined.Tolls, b.Tolls)
		merge(&combined.Wear, b.Wear)
		merge(&combined.Driver, b.Driver)
		if b.Parking != nil {
			if combined.Parking == nil {
				combined.Parking = &CostComponent{Label: "Parking"}
			}
			merge(combined.Parking, *b.Parking)
		}
	}

	total := combined.Fuel.Amount + combined.Tolls.Amount + combined.Wear.Amount + combined.Driver.Amount
	if combined.Parking != nil {
		total += combined.Parking.Amount
	}
	combined.Total = common.Round2(total)
	return combined
}
