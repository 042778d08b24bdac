package routing

import (
	"context"

	"github.com/chauffio/chauffio/pkg/geo"
)

// Route is a resolved itinerary between two points.
type Route struct {
	Polyline        string    `json:"polyline,omitempty"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes float64   `json:"duration_minutes"`
	TollCost        *float64  `json:"toll_cost,omitempty"`
	From            geo.Point `json:"from"`
	To              geo.Point `json:"to"`
}

// Provider resolves a route between two coordinates. Implementations are
// best-effort: pricing falls back to haversine estimates when they fail.
type Provider interface {
	Route(ctx context.Context, from, to geo.Point) (*Route, error)
}
