package segmentation

import (
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// SegmentationMethod records how a route was split into zone segments.
type SegmentationMethod string

const (
	MethodPolyline SegmentationMethod = "POLYLINE"
	MethodFallback SegmentationMethod = "FALLBACK"
)

// OutsideZoneCode marks route portions not covered by any zone.
const OutsideZoneCode = "OUTSIDE_ZONE"

// Segment is one contiguous stretch of the route attributed to a zone.
type Segment struct {
	ZoneID            *uuid.UUID `json:"zone_id,omitempty"`
	ZoneCode          string     `json:"zone_code"`
	ZoneName          string     `json:"zone_name"`
	DistanceKm        float64    `json:"distance_km"`
	DurationMinutes   float64    `json:"duration_minutes"`
	PriceMultiplier   float64    `json:"price_multiplier"`
	SurchargesApplied float64    `json:"surcharges_applied"`
	EntryPoint        *geo.Point `json:"entry_point,omitempty"`
	ExitPoint         *geo.Point `json:"exit_point,omitempty"`
}

// Result aggregates the per-zone segments of a route.
type Result struct {
	Segments           []Segment          `json:"segments"`
	WeightedMultiplier float64            `json:"weighted_multiplier"`
	TotalSurcharges    float64            `json:"total_surcharges"`
	TotalDistanceKm    float64            `json:"total_distance_km"`
	SegmentationMethod SegmentationMethod `json:"segmentation_method"`
}
