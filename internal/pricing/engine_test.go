package pricing

import (
	"errors"
	"testing"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

var (
	parisPoint     = geo.Point{Lat: 48.8566, Lng: 2.3522}
	marseillePoint = geo.Point{Lat: 43.2965, Lng: 5.3698}
)

func testDefaults() config.PricingConfig {
	return config.PricingConfig{
		Timezone:                "Europe/Paris",
		DefaultDistanceKm:       30,
		DefaultDurationMinutes:  45,
		DefaultRatePerKm:        1.8,
		DefaultRatePerHour:      45,
		DefaultTargetMarginPct:  20,
		GreenMarginThresholdPct: 20,
	}
}

func privateClient() *contacts.Contact {
	return &contacts.Contact{ID: uuid.New(), Name: "Jean Martin", IsPartner: false}
}

func partnerWithContract(contract *contacts.PartnerContract) *contacts.Contact {
	return &contacts.Contact{ID: uuid.New(), Name: "Voyages SA", IsPartner: true, PartnerContract: contract}
}

func berline() *vehicles.Category {
	return &vehicles.Category{
		ID:                 uuid.New(),
		Code:               "BERLINE",
		Name:               "Berline",
		PriceMultiplier:    1.0,
		DefaultRatePerKm:   floatPtr(1.8),
		DefaultRatePerHour: floatPtr(45),
	}
}

func engineContext(contact *contacts.Contact, category *vehicles.Category) EngineContext {
	return EngineContext{
		Contact:  contact,
		Category: category,
		Settings: &costing.OrganizationPricingSettings{},
		Defaults: testDefaults(),
		Now:      time.Date(2026, 7, 8, 10, 0, 0, 0, time.UTC),
	}
}

func parisMarseilleRequest() Request {
	return Request{
		ContactID:                uuid.New(),
		Pickup:                   parisPoint,
		Dropoff:                  marseillePoint,
		VehicleCategoryID:        uuid.New(),
		TripType:                 grids.TripTransfer,
		EstimatedDistanceKm:      floatPtr(780),
		EstimatedDurationMinutes: floatPtr(480),
	}
}

func TestCompute_DynamicParisMarseille(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())

	result := Compute(parisMarseilleRequest(), engineCtx)

	// max(780·1.8, 8·45) = 1404, +20% margin.
	assert.Equal(t, ModeDynamic, result.Mode)
	assert.Equal(t, FallbackPrivateClient, result.FallbackReason)
	assert.Equal(t, 1684.8, result.Price)
	assert.Equal(t, RateSourceCategory, result.RateSource)
	assert.True(t, result.UsedCategoryRates)
	assert.False(t, result.IsContractPrice)
	assert.Positive(t, result.InternalCost)
	assert.Equal(t, common.Round2(result.Price-result.InternalCost), result.Margin)
}

func TestCompute_CategoryRatesSuppressMultiplier(t *testing.T) {
	autocar := &vehicles.Category{
		ID:                 uuid.New(),
		Code:               "AUTOCAR",
		Name:               "Autocar",
		PriceMultiplier:    2.5,
		DefaultRatePerKm:   floatPtr(4.5),
		DefaultRatePerHour: floatPtr(120),
	}
	engineCtx := engineContext(privateClient(), autocar)

	result := Compute(parisMarseilleRequest(), engineCtx)

	// base = max(780·4.5, 8·120) = 3510; multiplier must not stack.
	assert.True(t, result.UsedCategoryRates)
	assert.Greater(t, result.Price, 3500.0)
	assert.Less(t, result.Price, 5000.0)
	for _, rule := range result.AppliedRules {
		assert.NotEqual(t, rates.RuleCategoryMultiplier, rule.Type)
	}
}

func TestCompute_OrganizationRatesApplyMultiplier(t *testing.T) {
	van := &vehicles.Category{
		ID:              uuid.New(),
		Code:            "VAN",
		Name:            "Van",
		PriceMultiplier: 1.5,
	}
	engineCtx := engineContext(privateClient(), van)

	result := Compute(parisMarseilleRequest(), engineCtx)

	// 1404 · 1.5 · 1.2 margin.
	assert.Equal(t, RateSourceOrganization, result.RateSource)
	assert.False(t, result.UsedCategoryRates)
	assert.Equal(t, 2527.2, result.Price)

	found := false
	for _, rule := range result.AppliedRules {
		if rule.Type == rates.RuleCategoryMultiplier {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompute_DefaultsWhenNoEstimates(t *testing.T) {
	engineCtx := engineContext(privateClient(), nil)
	req := parisMarseilleRequest()
	req.EstimatedDistanceKm = nil
	req.EstimatedDurationMinutes = nil

	result := Compute(req, engineCtx)

	// 30 km, 45 min defaults: max(30·1.8, 0.75·45) = 54, +20%.
	assert.Equal(t, 30.0, result.DistanceKm)
	assert.Equal(t, 45.0, result.DurationMinutes)
	assert.Equal(t, 64.8, result.Price)
}

func TestCompute_NoContractFallback(t *testing.T) {
	engineCtx := engineContext(partnerWithContract(nil), berline())

	result := Compute(parisMarseilleRequest(), engineCtx)
	assert.Equal(t, ModeDynamic, result.Mode)
	assert.Equal(t, FallbackNoContract, result.FallbackReason)
}

func TestCompute_GridHit(t *testing.T) {
	catID := uuid.New()
	zoneParis := zones.Zone{
		ID: uuid.New(), Code: "PARIS", Name: "Paris", Type: zones.ZoneTypeRadius,
		Center: &parisPoint, RadiusKm: 30, IsActive: true,
	}
	zoneMarseille := zones.Zone{
		ID: uuid.New(), Code: "MARSEILLE", Name: "Marseille", Type: zones.ZoneTypeRadius,
		Center: &marseillePoint, RadiusKm: 30, IsActive: true,
	}

	contract := &contacts.PartnerContract{
		ID:       uuid.New(),
		IsActive: true,
		RouteAssignments: []grids.RouteAssignment{{
			Route: grids.ZoneRoute{
				ID:   uuid.New(),
				Name: "Paris-Marseille",
				Origin: &grids.RouteEndpoint{
					Type: grids.EndpointZones, ZoneIDs: []uuid.UUID{zoneParis.ID},
				},
				Destination: &grids.RouteEndpoint{
					Type: grids.EndpointZones, ZoneIDs: []uuid.UUID{zoneMarseille.ID},
				},
				VehicleCategoryID: catID,
				FixedPrice:        1500,
				Direction:         grids.DirectionBidirectional,
				IsActive:          true,
			},
			OverridePrice: floatPtr(1350),
		}},
	}

	engineCtx := engineContext(partnerWithContract(contract), berline())
	engineCtx.Zones = []zones.Zone{zoneParis, zoneMarseille}

	req := parisMarseilleRequest()
	req.VehicleCategoryID = catID

	result := Compute(req, engineCtx)

	assert.Equal(t, ModeFixedGrid, result.Mode)
	assert.Equal(t, 1350.0, result.Price)
	assert.True(t, result.IsContractPrice)
	assert.Empty(t, result.FallbackReason)
	require.NotNil(t, result.MatchedGrid)
	assert.True(t, result.MatchedGrid.IsOverride)

	var overrideRule *rates.AppliedRule
	for i := range result.AppliedRules {
		if result.AppliedRules[i].Type == rates.RulePartnerOverridePrice {
			overrideRule = &result.AppliedRules[i]
		}
	}
	require.NotNil(t, overrideRule)
	assert.Equal(t, 1500.0, overrideRule.PriceBefore)
	assert.Equal(t, 1350.0, overrideRule.PriceAfter)
}

func TestCompute_ZoneIndexClassifiesLikeFullScan(t *testing.T) {
	zoneParis := zones.Zone{
		ID: uuid.New(), Code: "PARIS", Name: "Paris", Type: zones.ZoneTypeRadius,
		Center: &parisPoint, RadiusKm: 30, IsActive: true,
	}
	zoneMarseille := zones.Zone{
		ID: uuid.New(), Code: "MARSEILLE", Name: "Marseille", Type: zones.ZoneTypeRadius,
		Center: &marseillePoint, RadiusKm: 30, IsActive: true,
	}

	engineCtx := engineContext(privateClient(), berline())
	engineCtx.Zones = []zones.Zone{zoneParis, zoneMarseille}

	scanned := Compute(parisMarseilleRequest(), engineCtx)

	engineCtx.ZoneIndex = zones.NewSpatialIndex(engineCtx.Zones)
	indexed := Compute(parisMarseilleRequest(), engineCtx)

	require.NotNil(t, indexed.PickupZone)
	require.NotNil(t, indexed.DropoffZone)
	assert.Equal(t, zoneParis.ID, indexed.PickupZone.ID)
	assert.Equal(t, zoneMarseille.ID, indexed.DropoffZone.ID)
	assert.Equal(t, scanned.Price, indexed.Price)
	assert.Equal(t, scanned.PickupZone.ID, indexed.PickupZone.ID)
	assert.Equal(t, scanned.DropoffZone.ID, indexed.DropoffZone.ID)
}

func TestCompute_GridMissFallbackReasons(t *testing.T) {
	contract := &contacts.PartnerContract{ID: uuid.New(), IsActive: true}

	tests := []struct {
		tripType grids.TripType
		reason   FallbackReason
	}{
		{grids.TripTransfer, FallbackNoZoneMatch},
		{grids.TripExcursion, FallbackNoExcursionMatch},
		{grids.TripDispo, FallbackNoDispoMatch},
	}

	for _, tt := range tests {
		t.Run(string(tt.tripType), func(t *testing.T) {
			engineCtx := engineContext(partnerWithContract(contract), berline())
			req := parisMarseilleRequest()
			req.TripType = tt.tripType

			result := Compute(req, engineCtx)
			assert.Equal(t, ModeDynamic, result.Mode)
			assert.Equal(t, tt.reason, result.FallbackReason)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())
	req := parisMarseilleRequest()

	a := Compute(req, engineCtx)
	b := Compute(req, engineCtx)
	assert.Equal(t, a, b)
}

func TestCompute_ZoneMappingRuleAlwaysFirst(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())
	result := Compute(parisMarseilleRequest(), engineCtx)

	require.NotEmpty(t, result.AppliedRules)
	assert.Equal(t, rates.RuleZoneMapping, result.AppliedRules[0].Type)
}

func TestClassifyProfitability_Boundaries(t *testing.T) {
	defaults := testDefaults()

	tests := []struct {
		margin float64
		want   ProfitabilityIndicator
	}{
		{25, ProfitabilityGreen},
		{20, ProfitabilityGreen}, // boundary inclusive
		{19.99, ProfitabilityOrange},
		{0, ProfitabilityOrange}, // boundary inclusive
		{-0.01, ProfitabilityRed},
		{-30, ProfitabilityRed},
	}
	for _, tt := range tests {
		got := ClassifyProfitability(tt.margin, nil, defaults)
		assert.Equal(t, tt.want, got.Indicator, "margin %.2f", tt.margin)
	}
}

func TestClassifyProfitability_SettingsOverrideThresholds(t *testing.T) {
	settings := &costing.OrganizationPricingSettings{
		GreenMarginThresholdPercent:  floatPtr(30),
		OrangeMarginThresholdPercent: floatPtr(10),
	}

	got := ClassifyProfitability(25, settings, testDefaults())
	assert.Equal(t, ProfitabilityOrange, got.Indicator)
	assert.Equal(t, 30.0, got.GreenThreshold)
}

func TestCommission(t *testing.T) {
	c := Commission(1000, 600, 10)
	require.NotNil(t, c)
	assert.Equal(t, 100.0, c.CommissionAmount)
	assert.Equal(t, 300.0, c.EffectiveMargin)
	assert.Equal(t, 30.0, c.EffectiveMarginPercent)

	assert.Nil(t, Commission(1000, 600, 0))
}

func TestCompute_CommissionDrivesProfitability(t *testing.T) {
	contract := &contacts.PartnerContract{ID: uuid.New(), IsActive: true, CommissionPercent: 25}
	engineCtx := engineContext(partnerWithContract(contract), berline())

	result := Compute(parisMarseilleRequest(), engineCtx)
	require.NotNil(t, result.Commission)
	assert.Equal(t, 25.0, result.Commission.CommissionPercent)
	assert.Equal(t, result.Commission.EffectiveMarginPercent, result.Profitability.MarginPercent)
	assert.Less(t, result.Commission.EffectiveMarginPercent, result.MarginPercent)
}

func TestApplyPriceOverride(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())
	result := Compute(parisMarseilleRequest(), engineCtx)
	originalPrice := result.Price

	err := ApplyPriceOverride(result, 1500, "negotiated at booking", nil, engineCtx)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, result.Price)
	assert.True(t, result.OverrideApplied)
	require.NotNil(t, result.PreviousPrice)
	assert.Equal(t, originalPrice, *result.PreviousPrice)

	last := result.AppliedRules[len(result.AppliedRules)-1]
	assert.Equal(t, rates.RuleManualOverride, last.Type)
	assert.Equal(t, originalPrice, last.Details["previous_price"])
	assert.Equal(t, 1500.0, last.Details["new_price"])
}

func TestApplyPriceOverride_RejectsNonPositive(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())
	result := Compute(parisMarseilleRequest(), engineCtx)

	err := ApplyPriceOverride(result, 0, "", nil, engineCtx)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeInvalidPrice, appErr.ErrorCode)
	assert.False(t, result.OverrideApplied)
}

func TestApplyPriceOverride_MarginFloor(t *testing.T) {
	engineCtx := engineContext(privateClient(), berline())
	result := Compute(parisMarseilleRequest(), engineCtx)

	// Price just above cost violates a 15% floor.
	lowPrice := result.InternalCost * 1.05
	err := ApplyPriceOverride(result, lowPrice, "", floatPtr(15), engineCtx)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeBelowMinimumMargin, appErr.ErrorCode)

	// A healthy price passes the same floor.
	err = ApplyPriceOverride(result, result.InternalCost*2, "", floatPtr(15), engineCtx)
	assert.NoError(t, err)
}

func TestMarginPercent_ZeroWhenPriceNonPositive(t *testing.T) {
	assert.Equal(t, 0.0, common.SafePercent(50, 0))
	assert.Equal(t, 0.0, common.SafePercent(50, -10))
}
