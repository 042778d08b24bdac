package subcontracting

import (
	"time"

	"github.com/chauffio/chauffio/pkg/geo"
)

const expiringSoonWindow = 60 * time.Minute

// IsValid reports whether the empty leg can still be offered.
func (e *EmptyLeg) IsValid(now time.Time) bool {
	return e.IsActive && now.Before(e.WindowEnd)
}

// Status classifies the remaining window.
func (e *EmptyLeg) Status(now time.Time) EmptyLegStatus {
	if !e.WindowEnd.After(now) {
		return EmptyLegExpired
	}
	if e.WindowEnd.Sub(now) <= expiringSoonWindow {
		return EmptyLegExpiringSoon
	}
	return EmptyLegAvailable
}

// Matches reports whether a trip can ride the empty leg: the pickup time
// falls inside the window and both endpoints sit within the match radius.
func (e *EmptyLeg) Matches(pickup, dropoff geo.Point, pickupAt time.Time) bool {
	if pickupAt.Before(e.WindowStart) || pickupAt.After(e.WindowEnd) {
		return false
	}
	if geo.Distance(pickup, e.From) > e.MaxMatchDistanceKm {
		return false
	}
	return geo.Distance(dropoff, e.To) <= e.MaxMatchDistanceKm
}

// MatchEmptyLegs returns the valid empty legs a trip can use.
func MatchEmptyLegs(legs []EmptyLeg, pickup, dropoff geo.Point, pickupAt, now time.Time) []EmptyLeg {
	var out []EmptyLeg
	for i := range legs {
		leg := legs[i]
		if !leg.IsValid(now) {
			continue
		}
		if leg.Matches(pickup, dropoff, pickupAt) {
			out = append(out, leg)
		}
	}
	return out
}
