package zones

import (
	"errors"
	"fmt"
	"time"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// ZoneType discriminates the three supported zone shapes.
type ZoneType string

const (
	ZoneTypePolygon ZoneType = "POLYGON"
	ZoneTypeRadius  ZoneType = "RADIUS"
	ZoneTypePoint   ZoneType = "POINT"
)

// PointMatchRadiusKm is the fixed tolerance around POINT zones (100 m).
const PointMatchRadiusKm = 0.1

// ConflictStrategy selects the winner when a point falls in several zones.
type ConflictStrategy string

const (
	StrategyPriority      ConflictStrategy = "PRIORITY"
	StrategyMostExpensive ConflictStrategy = "MOST_EXPENSIVE"
	StrategyClosest       ConflictStrategy = "CLOSEST"
	StrategyCombined      ConflictStrategy = "COMBINED"
	// StrategyDefault keeps the specificity order POINT > RADIUS > POLYGON.
	StrategyDefault ConflictStrategy = ""
)

// Zone is a tenant-defined pricing region.
type Zone struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`
	Type           ZoneType  `json:"type" db:"type"`

	// Ring holds the polygon outer ring in GeoJSON order: [lng, lat].
	Ring [][]float64 `json:"ring,omitempty" db:"ring"`

	// Center and RadiusKm apply to RADIUS and POINT zones.
	Center   *geo.Point `json:"center,omitempty" db:"center"`
	RadiusKm float64    `json:"radius_km,omitempty" db:"radius_km"`

	PriceMultiplier       *float64 `json:"price_multiplier,omitempty" db:"price_multiplier"`
	Priority              *int     `json:"priority,omitempty" db:"priority"`
	FixedParkingSurcharge float64  `json:"fixed_parking_surcharge" db:"fixed_parking_surcharge"`
	FixedAccessFee        float64  `json:"fixed_access_fee" db:"fixed_access_fee"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Multiplier returns the zone price multiplier, defaulting to 1.0.
func (z *Zone) Multiplier() float64 {
	if z.PriceMultiplier == nil {
		return 1.0
	}
	return *z.PriceMultiplier
}

// PriorityValue returns the zone priority, defaulting to 0.
func (z *Zone) PriorityValue() int {
	if z.Priority == nil {
		return 0
	}
	return *z.Priority
}

// FixedSurcharges is the per-traversal fixed amount a zone adds once.
func (z *Zone) FixedSurcharges() float64 {
	return z.FixedParkingSurcharge + z.FixedAccessFee
}

// RingPoints converts the stored [lng, lat] ring into geo points.
func (z *Zone) RingPoints() []geo.Point {
	points := make([]geo.Point, 0, len(z.Ring))
	for _, c := range z.Ring {
		if len(c) < 2 {
			continue
		}
		points = append(points, geo.Point{Lat: c[1], Lng: c[0]})
	}
	return points
}

// ReferencePoint returns the zone center, or the polygon centroid.
func (z *Zone) ReferencePoint() geo.Point {
	switch z.Type {
	case ZoneTypePolygon:
		return geo.Centroid(z.RingPoints())
	default:
		if z.Center == nil {
			return geo.Point{}
		}
		return *z.Center
	}
}

// Contains reports whether the point falls inside the zone's geometry.
func (z *Zone) Contains(p geo.Point) bool {
	switch z.Type {
	case ZoneTypePolygon:
		return geo.PointInPolygon(p, z.RingPoints())
	case ZoneTypeRadius:
		return z.Center != nil && geo.PointInRadius(p, *z.Center, z.RadiusKm)
	case ZoneTypePoint:
		return z.Center != nil && geo.PointInRadius(p, *z.Center, PointMatchRadiusKm)
	default:
		return false
	}
}

// EffectiveRadiusKm returns the matching radius of the zone: its configured
// radius for RADIUS, the fixed tolerance for POINT, 0 for POLYGON.
func (z *Zone) EffectiveRadiusKm() float64 {
	switch z.Type {
	case ZoneTypeRadius:
		return z.RadiusKm
	case ZoneTypePoint:
		return PointMatchRadiusKm
	default:
		return 0
	}
}

var (
	ErrInvalidRing   = errors.New("polygon ring needs at least 3 points and must be closed")
	ErrInvalidRadius = errors.New("radius must be positive")
	ErrMissingCenter = errors.New("center coordinate is required")
)

// Validate checks geometric invariants per zone type.
func (z *Zone) Validate() error {
	switch z.Type {
	case ZoneTypePolygon:
		points := z.RingPoints()
		if len(points) < 3 {
			return ErrInvalidRing
		}
		if points[0] != points[len(points)-1] {
			return ErrInvalidRing
		}
	case ZoneTypeRadius:
		if z.Center == nil {
			return ErrMissingCenter
		}
		if z.RadiusKm <= 0 {
			return ErrInvalidRadius
		}
	case ZoneTypePoint:
		if z.Center == nil {
			return ErrMissingCenter
		}
	default:
		return fmt.Errorf("unknown zone type %q", z.Type)
	}
	return nil
}

// ClassifyRequest is the payload for the classification endpoint.
type ClassifyRequest struct {
	Latitude  float64          `json:"latitude" binding:"required"`
	Longitude float64          `json:"longitude" binding:"required"`
	Strategy  ConflictStrategy `json:"strategy,omitempty"`
}

// ClassifyResponse reports the winning zone plus all raw matches in order.
type ClassifyResponse struct {
	Zone    *Zone  `json:"zone,omitempty"`
	Matches []Zone `json:"matches"`
}
