package grids

import (
	"sort"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// Route precedence ranks. More specific configurations are evaluated first
// so an address-level price beats a broad zone pair.
const (
	rankAddressAddress = iota
	rankAddressZones
	rankZonesAddress
	rankMultiZone
	rankLegacy
	rankUnconfigured
)

func routeRank(r *ZoneRoute) int {
	o, d := r.Origin, r.Destination
	switch {
	case o != nil && d != nil && o.Type == EndpointAddress && d.Type == EndpointAddress:
		return rankAddressAddress
	case o != nil && d != nil && o.Type == EndpointAddress && d.Type == EndpointZones:
		return rankAddressZones
	case o != nil && d != nil && o.Type == EndpointZones && d.Type == EndpointAddress:
		return rankZonesAddress
	case o != nil && d != nil:
		return rankMultiZone
	case r.LegacyFromZoneID != nil && r.LegacyToZoneID != nil:
		return rankLegacy
	default:
		return rankUnconfigured
	}
}

// MatchRoutes evaluates a contract's zone routes against a transfer request,
// most specific configuration first. It returns the first hit, plus the
// rejected entries in evaluation order.
func MatchRoutes(req Request, assignments []RouteAssignment) (*Match, []CheckedEntry) {
	ordered := make([]RouteAssignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return routeRank(&ordered[i].Route) < routeRank(&ordered[j].Route)
	})

	var checked []CheckedEntry
	for i := range ordered {
		a := &ordered[i]
		route := &a.Route

		if !route.IsActive {
			checked = append(checked, CheckedEntry{ID: route.ID, Name: route.Name, Reason: RejectInactive})
			continue
		}
		if route.VehicleCategoryID != req.VehicleCategoryID {
			checked = append(checked, CheckedEntry{ID: route.ID, Name: route.Name, Reason: RejectCategoryMismatch})
			continue
		}

		forward := routeMatchesGeometry(route, req.Pickup, req.Dropoff, req.PickupZoneIDs, req.DropoffZoneIDs)
		reverse := routeMatchesGeometry(route, req.Dropoff, req.Pickup, req.DropoffZoneIDs, req.PickupZoneIDs)

		switch {
		case forward && directionAllowsForward(route.Direction):
			return buildMatch(MatchRoute, route.ID, route.Name, route.FixedPrice, a.OverridePrice, false), checked
		case reverse && directionAllowsReverse(route.Direction):
			return buildMatch(MatchRoute, route.ID, route.Name, route.FixedPrice, a.OverridePrice, true), checked
		case forward || reverse:
			checked = append(checked, CheckedEntry{ID: route.ID, Name: route.Name, Reason: RejectDirectionMismatch})
		default:
			checked = append(checked, CheckedEntry{ID: route.ID, Name: route.Name, Reason: RejectZoneMismatch})
		}
	}
	return nil, checked
}

func directionAllowsForward(d Direction) bool {
	return d == DirectionAToB || d == DirectionBidirectional || d == ""
}

func directionAllowsReverse(d Direction) bool {
	return d == DirectionBToA || d == DirectionBidirectional
}

// routeMatchesGeometry checks the route endpoints against one orientation of
// the request.
func routeMatchesGeometry(route *ZoneRoute, origin, destination geo.Point, originZones, destinationZones []uuid.UUID) bool {
	if route.Origin != nil && route.Destination != nil {
		return endpointMatches(route.Origin, origin, originZones) &&
			endpointMatches(route.Destination, destination, destinationZones)
	}
	if route.LegacyFromZoneID != nil && route.LegacyToZoneID != nil {
		return containsZone(originZones, *route.LegacyFromZoneID) &&
			containsZone(destinationZones, *route.LegacyToZoneID)
	}
	return false
}

func endpointMatches(ep *RouteEndpoint, p geo.Point, zoneIDs []uuid.UUID) bool {
	switch ep.Type {
	case EndpointAddress:
		return ep.Address != nil && geo.PointInRadius(p, *ep.Address, AddressMatchRadiusKm)
	case EndpointZones:
		for _, id := range ep.ZoneIDs {
			if containsZone(zoneIDs, id) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func containsZone(zoneIDs []uuid.UUID, id uuid.UUID) bool {
	for _, z := range zoneIDs {
		if z == id {
			return true
		}
	}
	return false
}

// MatchExcursions evaluates excursion packages by category and optional
// origin/destination zone constraints.
func MatchExcursions(req Request, assignments []ExcursionAssignment) (*Match, []CheckedEntry) {
	var checked []CheckedEntry
	for i := range assignments {
		a := &assignments[i]
		pkg := &a.Package

		if !pkg.IsActive {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectInactive})
			continue
		}
		if pkg.VehicleCategoryID != req.VehicleCategoryID {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectCategoryMismatch})
			continue
		}
		if pkg.OriginZoneID != nil && !containsZone(req.PickupZoneIDs, *pkg.OriginZoneID) {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectZoneMismatch})
			continue
		}
		if pkg.DestinationZoneID != nil && !containsZone(req.DropoffZoneIDs, *pkg.DestinationZoneID) {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectZoneMismatch})
			continue
		}

		return buildMatch(MatchExcursion, pkg.ID, pkg.Name, pkg.Price, a.OverridePrice, false), checked
	}
	return nil, checked
}

// MatchDispos evaluates dispo packages by vehicle category and prices the
// booking: hours times the hourly price, plus kilometre overage beyond the
// included allowance.
func MatchDispos(req Request, assignments []DispoAssignment) (*Match, []CheckedEntry) {
	var checked []CheckedEntry
	for i := range assignments {
		a := &assignments[i]
		pkg := &a.Package

		if !pkg.IsActive {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectInactive})
			continue
		}
		if pkg.VehicleCategoryID != req.VehicleCategoryID {
			checked = append(checked, CheckedEntry{ID: pkg.ID, Name: pkg.Name, Reason: RejectCategoryMismatch})
			continue
		}

		hourly := pkg.BasePrice
		isOverride := false
		if a.OverridePrice != nil {
			hourly = *a.OverridePrice
			isOverride = true
		}

		price := DispoPrice(hourly, req.DurationHours, req.DistanceKm, pkg.IncludedKmPerHour, pkg.OverageRatePerKm)
		catalog := DispoPrice(pkg.BasePrice, req.DurationHours, req.DistanceKm, pkg.IncludedKmPerHour, pkg.OverageRatePerKm)

		return &Match{
			Kind:           MatchDispo,
			EntryID:        pkg.ID,
			EntryName:      pkg.Name,
			CatalogPrice:   catalog,
			EffectivePrice: price,
			IsOverride:     isOverride,
		}, checked
	}
	return nil, checked
}

// DispoPrice computes hourly base plus kilometre overage.
func DispoPrice(hourlyRate, hours, distanceKm, includedKmPerHour, overageRatePerKm float64) float64 {
	base := hours * hourlyRate
	includedKm := hours * includedKmPerHour
	overageKm := distanceKm - includedKm
	if overageKm < 0 {
		overageKm = 0
	}
	return common.Round2(base + overageKm*overageRatePerKm)
}

func buildMatch(kind MatchKind, id uuid.UUID, name string, catalogPrice float64, overridePrice *float64, reversed bool) *Match {
	m := &Match{
		Kind:           kind,
		EntryID:        id,
		EntryName:      name,
		CatalogPrice:   common.Round2(catalogPrice),
		EffectivePrice: common.Round2(catalogPrice),
		Reversed:       reversed,
	}
	if overridePrice != nil {
		m.EffectivePrice = common.Round2(*overridePrice)
		m.IsOverride = true
	}
	return m
}
