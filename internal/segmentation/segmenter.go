package segmentation

import (
	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
)

// zoneTally accumulates one zone's share of the route in first-seen order.
type zoneTally struct {
	zone       *zones.Zone
	distanceKm float64
	entryPoint geo.Point
	exitPoint  geo.Point
}

// SegmentRoute decodes a polyline, walks it and splits the route distance
// across the zones it traverses. Portions not covered by any zone are
// reported under OutsideZoneCode with multiplier 1.0.
func SegmentRoute(encodedPolyline string, zoneSet []zones.Zone, totalDurationMinutes float64, strategy zones.ConflictStrategy) (*Result, error) {
	points, err := geo.DecodePolyline(encodedPolyline)
	if err != nil {
		return nil, err
	}
	points = geo.Simplify(points, geo.DefaultSimplifyThresholdKm)

	var (
		order   []string
		tallies = make(map[string]*zoneTally)
	)

	credit := func(z *zones.Zone, from, to geo.Point) {
		key := OutsideZoneCode
		if z != nil {
			key = z.ID.String()
		}
		tally, ok := tallies[key]
		if !ok {
			tally = &zoneTally{zone: z, entryPoint: from}
			tallies[key] = tally
			order = append(order, key)
		}
		tally.distanceKm += geo.Distance(from, to)
		tally.exitPoint = to
	}

	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		za := zones.ClassifyPoint(a, zoneSet, strategy)
		zb := zones.ClassifyPoint(b, zoneSet, strategy)

		if sameZone(za, zb) {
			credit(za, a, b)
			continue
		}

		// The pair straddles a boundary. Bisect on membership of the
		// departing side to place the crossing.
		crossing := geo.CrossingPoint(a, b, func(p geo.Point) bool {
			return sameZone(zones.ClassifyPoint(p, zoneSet, strategy), za)
		})
		credit(za, a, crossing)
		credit(zb, crossing, b)
	}

	return buildResult(order, tallies, totalDurationMinutes, MethodPolyline), nil
}

// FallbackSegments produces a segmentation without route geometry. Same zone
// on both ends yields one segment, different zones split the trip 50/50.
func FallbackSegments(pickupZone, dropoffZone *zones.Zone, distanceKm, durationMinutes float64) *Result {
	var segments []Segment
	if sameZone(pickupZone, dropoffZone) {
		segments = []Segment{newSegment(pickupZone, distanceKm, durationMinutes)}
	} else {
		segments = []Segment{
			newSegment(pickupZone, distanceKm/2, durationMinutes/2),
			newSegment(dropoffZone, distanceKm/2, durationMinutes/2),
		}
	}

	return finalize(segments, MethodFallback)
}

// ConcentricSegments handles RADIUS zones sharing a center (airport rings,
// city belts). The trip is projected on the radial axis and split per shell
// crossed, in travel order. Leaving the outermost ring appends an
// OUTSIDE_ZONE segment.
func ConcentricSegments(pickup, dropoff geo.Point, ringZones []zones.Zone, distanceKm, durationMinutes float64) *Result {
	shells := sortByRadius(ringZones)
	if len(shells) == 0 {
		return FallbackSegments(nil, nil, distanceKm, durationMinutes)
	}

	center := *shells[0].Center
	pickupDist := geo.Distance(pickup, center)
	dropoffDist := geo.Distance(dropoff, center)

	outward := dropoffDist > pickupDist
	lo, hi := pickupDist, dropoffDist
	if !outward {
		lo, hi = dropoffDist, pickupDist
	}
	radialSpan := hi - lo
	if radialSpan <= 0 {
		return FallbackSegments(&shells[0], &shells[0], distanceKm, durationMinutes)
	}

	type slice struct {
		zone *zones.Zone
		span float64
	}
	var slices []slice

	prev := 0.0
	for i := range shells {
		shell := &shells[i]
		overlap := overlapLength(lo, hi, prev, shell.RadiusKm)
		if overlap > 0 {
			slices = append(slices, slice{zone: shell, span: overlap})
		}
		prev = shell.RadiusKm
	}
	if outside := overlapLength(lo, hi, prev, hi); outside > 0 && hi > prev {
		slices = append(slices, slice{zone: nil, span: outside})
	}

	// Inward trips traverse the shells outermost first.
	if !outward {
		for i, j := 0, len(slices)-1; i < j; i, j = i+1, j-1 {
			slices[i], slices[j] = slices[j], slices[i]
		}
	}

	segments := make([]Segment, 0, len(slices))
	for _, s := range slices {
		fraction := s.span / radialSpan
		segments = append(segments, newSegment(s.zone, distanceKm*fraction, durationMinutes*fraction))
	}
	return finalize(segments, MethodFallback)
}

func sameZone(a, b *zones.Zone) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func newSegment(z *zones.Zone, distanceKm, durationMinutes float64) Segment {
	seg := Segment{
		ZoneCode:        OutsideZoneCode,
		ZoneName:        "Outside zone",
		DistanceKm:      common.Round2(distanceKm),
		DurationMinutes: common.Round1(durationMinutes),
		PriceMultiplier: 1.0,
	}
	if z != nil {
		id := z.ID
		seg.ZoneID = &id
		seg.ZoneCode = z.Code
		seg.ZoneName = z.Name
		seg.PriceMultiplier = z.Multiplier()
		seg.SurchargesApplied = z.FixedSurcharges()
	}
	return seg
}

func buildResult(order []string, tallies map[string]*zoneTally, totalDurationMinutes float64, method SegmentationMethod) *Result {
	var totalDist float64
	for _, key := range order {
		totalDist += tallies[key].distanceKm
	}

	segments := make([]Segment, 0, len(order))
	for _, key := range order {
		tally := tallies[key]
		seg := newSegment(tally.zone, tally.distanceKm, 0)

		// Duration is prorated by distance, split uniformly when the route
		// has no measurable length.
		if totalDist > 0 {
			seg.DurationMinutes = common.Round1(totalDurationMinutes * tally.distanceKm / totalDist)
		} else {
			seg.DurationMinutes = common.Round1(totalDurationMinutes / float64(len(order)))
		}

		entry, exit := tally.entryPoint, tally.exitPoint
		seg.EntryPoint = &entry
		seg.ExitPoint = &exit
		segments = append(segments, seg)
	}

	return finalize(segments, method)
}

func finalize(segments []Segment, method SegmentationMethod) *Result {
	var totalDist, totalSurcharges, weighted float64
	for _, seg := range segments {
		totalDist += seg.DistanceKm
		totalSurcharges += seg.SurchargesApplied
		weighted += seg.DistanceKm * seg.PriceMultiplier
	}

	multiplier := 1.0
	if totalDist > 0 {
		multiplier = common.Round3(weighted / totalDist)
	}

	return &Result{
		Segments:           segments,
		WeightedMultiplier: multiplier,
		TotalSurcharges:    common.Round2(totalSurcharges),
		TotalDistanceKm:    common.Round2(totalDist),
		SegmentationMethod: method,
	}
}

func sortByRadius(ringZones []zones.Zone) []zones.Zone {
	shells := make([]zones.Zone, 0, len(ringZones))
	for _, z := range ringZones {
		if z.Type == zones.ZoneTypeRadius && z.Center != nil {
			shells = append(shells, z)
		}
	}
	for i := 1; i < len(shells); i++ {
		for j := i; j > 0 && shells[j].RadiusKm < shells[j-1].RadiusKm; j-- {
			shells[j], shells[j-1] = shells[j-1], shells[j]
		}
	}
	return shells
}

// overlapLength is the length of [lo,hi] ∩ [from,to].
func overlapLength(lo, hi, from, to float64) float64 {
	start := lo
	if from > start {
		start = from
	}
	end := hi
	if to < end {
		end = to
	}
	if end <= start {
		return 0
	}
	return end - start
}
