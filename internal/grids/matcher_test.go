package grids

import (
	"testing"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

var (
	berlineID = uuid.New()
	autocarID = uuid.New()

	cdgZoneID   = uuid.New()
	parisZoneID = uuid.New()
	orlyZoneID  = uuid.New()

	cdgPoint   = geo.Point{Lat: 49.0097, Lng: 2.5479}
	parisPoint = geo.Point{Lat: 48.8566, Lng: 2.3522}
)

func zonesRoute(name string, from, to uuid.UUID, price float64, direction Direction) ZoneRoute {
	return ZoneRoute{
		ID:   uuid.New(),
		Name: name,
		Origin: &RouteEndpoint{
			Type:    EndpointZones,
			ZoneIDs: []uuid.UUID{from},
		},
		Destination: &RouteEndpoint{
			Type:    EndpointZones,
			ZoneIDs: []uuid.UUID{to},
		},
		VehicleCategoryID: berlineID,
		FixedPrice:        price,
		Direction:         direction,
		IsActive:          true,
	}
}

func transferRequest(pickupZones, dropoffZones []uuid.UUID) Request {
	return Request{
		Pickup:            cdgPoint,
		Dropoff:           parisPoint,
		PickupZoneIDs:     pickupZones,
		DropoffZoneIDs:    dropoffZones,
		VehicleCategoryID: berlineID,
		TripType:          TripTransfer,
	}
}

func TestMatchRoutes_MultiZoneForward(t *testing.T) {
	route := zonesRoute("CDG-Paris", cdgZoneID, parisZoneID, 90, DirectionAToB)
	req := transferRequest([]uuid.UUID{cdgZoneID}, []uuid.UUID{parisZoneID})

	match, checked := MatchRoutes(req, []RouteAssignment{{Route: route}})
	require.NotNil(t, match)
	assert.Equal(t, MatchRoute, match.Kind)
	assert.Equal(t, 90.0, match.EffectivePrice)
	assert.False(t, match.IsOverride)
	assert.False(t, match.Reversed)
	assert.Empty(t, checked)
}

func TestMatchRoutes_OverridePriceWins(t *testing.T) {
	route := zonesRoute("CDG-Paris", cdgZoneID, parisZoneID, 90, DirectionBidirectional)
	req := transferRequest([]uuid.UUID{cdgZoneID}, []uuid.UUID{parisZoneID})

	match, _ := MatchRoutes(req, []RouteAssignment{{Route: route, OverridePrice: floatPtr(75)}})
	require.NotNil(t, match)
	assert.Equal(t, 75.0, match.EffectivePrice)
	assert.Equal(t, 90.0, match.CatalogPrice)
	assert.True(t, match.IsOverride)
}

func TestMatchRoutes_DirectionHandling(t *testing.T) {
	// Request runs Paris → CDG, the reverse of the configured route.
	req := Request{
		Pickup:            parisPoint,
		Dropoff:           cdgPoint,
		PickupZoneIDs:     []uuid.UUID{parisZoneID},
		DropoffZoneIDs:    []uuid.UUID{cdgZoneID},
		VehicleCategoryID: berlineID,
	}

	tests := []struct {
		name      string
		direction Direction
		wantHit   bool
	}{
		{"bidirectional accepts reverse", DirectionBidirectional, true},
		{"b_to_a accepts reverse", DirectionBToA, true},
		{"a_to_b rejects reverse", DirectionAToB, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := zonesRoute("CDG-Paris", cdgZoneID, parisZoneID, 90, tt.direction)
			match, checked := MatchRoutes(req, []RouteAssignment{{Route: route}})
			if tt.wantHit {
				require.NotNil(t, match)
				assert.True(t, match.Reversed)
			} else {
				assert.Nil(t, match)
				require.Len(t, checked, 1)
				assert.Equal(t, RejectDirectionMismatch, checked[0].Reason)
			}
		})
	}
}

func TestMatchRoutes_RejectionReasons(t *testing.T) {
	inactive := zonesRoute("Inactive", cdgZoneID, parisZoneID, 90, DirectionAToB)
	inactive.IsActive = false

	wrongCategory := zonesRoute("Autocar only", cdgZoneID, parisZoneID, 200, DirectionAToB)
	wrongCategory.VehicleCategoryID = autocarID

	wrongZones := zonesRoute("Orly-Paris", orlyZoneID, parisZoneID, 70, DirectionAToB)

	req := transferRequest([]uuid.UUID{cdgZoneID}, []uuid.UUID{parisZoneID})
	match, checked := MatchRoutes(req, []RouteAssignment{
		{Route: inactive}, {Route: wrongCategory}, {Route: wrongZones},
	})

	assert.Nil(t, match)
	require.Len(t, checked, 3)
	reasons := map[string]RejectionReason{}
	for _, c := range checked {
		reasons[c.Name] = c.Reason
	}
	assert.Equal(t, RejectInactive, reasons["Inactive"])
	assert.Equal(t, RejectCategoryMismatch, reasons["Autocar only"])
	assert.Equal(t, RejectZoneMismatch, reasons["Orly-Paris"])
}

func TestMatchRoutes_AddressPrecedenceOverZones(t *testing.T) {
	zonePair := zonesRoute("Zone pair", cdgZoneID, parisZoneID, 90, DirectionAToB)

	addressRoute := ZoneRoute{
		ID:   uuid.New(),
		Name: "Terminal 2E pickup",
		Origin: &RouteEndpoint{
			Type:    EndpointAddress,
			Address: &cdgPoint,
		},
		Destination: &RouteEndpoint{
			Type:    EndpointAddress,
			Address: &parisPoint,
		},
		VehicleCategoryID: berlineID,
		FixedPrice:        110,
		Direction:         DirectionAToB,
		IsActive:          true,
	}

	// Zone pair listed first; the address route must still win on
	// specificity.
	req := transferRequest([]uuid.UUID{cdgZoneID}, []uuid.UUID{parisZoneID})
	match, _ := MatchRoutes(req, []RouteAssignment{{Route: zonePair}, {Route: addressRoute}})
	require.NotNil(t, match)
	assert.Equal(t, "Terminal 2E pickup", match.EntryName)
}

func TestMatchRoutes_AddressProximity(t *testing.T) {
	route := ZoneRoute{
		ID:   uuid.New(),
		Name: "Exact address",
		Origin: &RouteEndpoint{
			Type:    EndpointAddress,
			Address: &cdgPoint,
		},
		Destination: &RouteEndpoint{
			Type:    EndpointZones,
			ZoneIDs: []uuid.UUID{parisZoneID},
		},
		VehicleCategoryID: berlineID,
		FixedPrice:        95,
		Direction:         DirectionAToB,
		IsActive:          true,
	}

	// ~80 m off the configured address still matches.
	near := Request{
		Pickup:            geo.Point{Lat: 49.0104, Lng: 2.5479},
		Dropoff:           parisPoint,
		DropoffZoneIDs:    []uuid.UUID{parisZoneID},
		VehicleCategoryID: berlineID,
	}
	match, _ := MatchRoutes(near, []RouteAssignment{{Route: route}})
	assert.NotNil(t, match)

	// ~500 m off does not.
	far := near
	far.Pickup = geo.Point{Lat: 49.0142, Lng: 2.5479}
	match, checked := MatchRoutes(far, []RouteAssignment{{Route: route}})
	assert.Nil(t, match)
	require.Len(t, checked, 1)
	assert.Equal(t, RejectZoneMismatch, checked[0].Reason)
}

func TestMatchRoutes_LegacyFallback(t *testing.T) {
	route := ZoneRoute{
		ID:                uuid.New(),
		Name:              "Legacy CDG-Paris",
		LegacyFromZoneID:  &cdgZoneID,
		LegacyToZoneID:    &parisZoneID,
		VehicleCategoryID: berlineID,
		FixedPrice:        85,
		Direction:         DirectionAToB,
		IsActive:          true,
	}

	req := transferRequest([]uuid.UUID{cdgZoneID}, []uuid.UUID{parisZoneID})
	match, _ := MatchRoutes(req, []RouteAssignment{{Route: route}})
	require.NotNil(t, match)
	assert.Equal(t, 85.0, match.EffectivePrice)
}

func TestMatchExcursions(t *testing.T) {
	pkg := ExcursionPackage{
		ID:                uuid.New(),
		Name:              "Versailles day trip",
		OriginZoneID:      &parisZoneID,
		VehicleCategoryID: berlineID,
		Price:             450,
		IsActive:          true,
	}

	req := Request{
		PickupZoneIDs:     []uuid.UUID{parisZoneID},
		VehicleCategoryID: berlineID,
		TripType:          TripExcursion,
	}
	match, checked := MatchExcursions(req, []ExcursionAssignment{{Package: pkg}})
	require.NotNil(t, match)
	assert.Equal(t, MatchExcursion, match.Kind)
	assert.Equal(t, 450.0, match.EffectivePrice)
	assert.Empty(t, checked)

	// Pickup outside the configured origin zone.
	req.PickupZoneIDs = []uuid.UUID{cdgZoneID}
	match, checked = MatchExcursions(req, []ExcursionAssignment{{Package: pkg}})
	assert.Nil(t, match)
	require.Len(t, checked, 1)
	assert.Equal(t, RejectZoneMismatch, checked[0].Reason)
}

func dispoPackage() DispoPackage {
	return DispoPackage{
		ID:                uuid.New(),
		Name:              "Berline hourly",
		VehicleCategoryID: berlineID,
		BasePrice:         45,
		IncludedKmPerHour: 50,
		OverageRatePerKm:  0.5,
		IsActive:          true,
	}
}

func TestMatchDispos_WithinIncludedKm(t *testing.T) {
	req := Request{
		VehicleCategoryID: berlineID,
		TripType:          TripDispo,
		DurationHours:     4,
		DistanceKm:        150,
	}
	match, _ := MatchDispos(req, []DispoAssignment{{Package: dispoPackage()}})
	require.NotNil(t, match)

	// 4 h · 45 = 180, 150 km under the 200 km allowance.
	assert.Equal(t, 180.0, match.EffectivePrice)
}

func TestMatchDispos_Overage(t *testing.T) {
	req := Request{
		VehicleCategoryID: berlineID,
		TripType:          TripDispo,
		DurationHours:     4,
		DistanceKm:        250,
	}
	match, _ := MatchDispos(req, []DispoAssignment{{Package: dispoPackage()}})
	require.NotNil(t, match)

	// 180 base + 50 km over · 0.5 = 205.
	assert.Equal(t, 205.0, match.EffectivePrice)
}

func TestMatchDispos_OverrideAppliesToHourly(t *testing.T) {
	req := Request{
		VehicleCategoryID: berlineID,
		TripType:          TripDispo,
		DurationHours:     4,
		DistanceKm:        100,
	}
	match, _ := MatchDispos(req, []DispoAssignment{{Package: dispoPackage(), OverridePrice: floatPtr(40)}})
	require.NotNil(t, match)
	assert.Equal(t, 160.0, match.EffectivePrice)
	assert.Equal(t, 180.0, match.CatalogPrice)
	assert.True(t, match.IsOverride)
}

func TestMatchDispos_CategoryMismatch(t *testing.T) {
	req := Request{
		VehicleCategoryID: autocarID,
		TripType:          TripDispo,
		DurationHours:     2,
	}
	match, checked := MatchDispos(req, []DispoAssignment{{Package: dispoPackage()}})
	assert.Nil(t, match)
	require.Len(t, checked, 1)
	assert.Equal(t, RejectCategoryMismatch, checked[0].Reason)
}
