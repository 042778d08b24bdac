package subcontracting

import (
	"testing"
	"time"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orly    = geo.Point{Lat: 48.7262, Lng: 2.3652}
	etoile  = geo.Point{Lat: 48.8738, Lng: 2.2950}
	lyon    = geo.Point{Lat: 45.7640, Lng: 4.8357}
	baseNow = time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
)

func returnLeg() EmptyLeg {
	return EmptyLeg{
		From:               orly,
		To:                 etoile,
		WindowStart:        baseNow.Add(-time.Hour),
		WindowEnd:          baseNow.Add(3 * time.Hour),
		MaxMatchDistanceKm: 5,
		IsActive:           true,
	}
}

func TestEmptyLeg_Status(t *testing.T) {
	leg := returnLeg()

	assert.Equal(t, EmptyLegAvailable, leg.Status(baseNow))
	assert.Equal(t, EmptyLegExpiringSoon, leg.Status(leg.WindowEnd.Add(-30*time.Minute)))
	assert.Equal(t, EmptyLegExpiringSoon, leg.Status(leg.WindowEnd.Add(-60*time.Minute)))
	assert.Equal(t, EmptyLegExpired, leg.Status(leg.WindowEnd))
	assert.Equal(t, EmptyLegExpired, leg.Status(leg.WindowEnd.Add(time.Hour)))
}

func TestEmptyLeg_IsValid(t *testing.T) {
	leg := returnLeg()
	assert.True(t, leg.IsValid(baseNow))
	assert.False(t, leg.IsValid(leg.WindowEnd))

	leg.IsActive = false
	assert.False(t, leg.IsValid(baseNow))
}

func TestEmptyLeg_Matches(t *testing.T) {
	leg := returnLeg()

	inWindow := baseNow.Add(time.Hour)
	assert.True(t, leg.Matches(orly, etoile, inWindow))

	// Pickup time outside the window.
	assert.False(t, leg.Matches(orly, etoile, leg.WindowEnd.Add(time.Minute)))
	assert.False(t, leg.Matches(orly, etoile, leg.WindowStart.Add(-time.Minute)))

	// Endpoints too far from the leg.
	assert.False(t, leg.Matches(lyon, etoile, inWindow))
	assert.False(t, leg.Matches(orly, lyon, inWindow))
}

func TestMatchEmptyLegs(t *testing.T) {
	good := returnLeg()
	inactive := returnLeg()
	inactive.IsActive = false
	elsewhere := returnLeg()
	elsewhere.From = lyon

	matches := MatchEmptyLegs([]EmptyLeg{good, inactive, elsewhere}, orly, etoile, baseNow.Add(time.Hour), baseNow)
	require.Len(t, matches, 1)
	assert.Equal(t, good.ID, matches[0].ID)
}
