package zones

import (
	"math"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/uber/h3-go/v4"
)

// Index resolution: ~8.5 km edge hexagons. Coarse on purpose; the index only
// prunes candidates, containment is always re-checked geometrically.
const indexResolution = 5

const indexCellEdgeKm = 8.5

// SpatialIndex prefilters candidate zones for a point using an H3 cover of
// each zone's bounding circle. Zones whose cover cannot be computed are kept
// in an always-checked bucket, so the index never loses a match.
type SpatialIndex struct {
	cells  map[h3.Cell][]int
	always []int
	zones  []Zone
}

// NewSpatialIndex builds the index over a zone set.
func NewSpatialIndex(zoneSet []Zone) *SpatialIndex {
	idx := &SpatialIndex{
		cells: make(map[h3.Cell][]int),
		zones: zoneSet,
	}

	for i, z := range zoneSet {
		cover, ok := coverCells(z)
		if !ok {
			idx.always = append(idx.always, i)
			continue
		}
		for _, cell := range cover {
			idx.cells[cell] = append(idx.cells[cell], i)
		}
	}
	return idx
}

// Candidates returns the zones whose geometry could contain the point.
func (idx *SpatialIndex) Candidates(p geo.Point) []Zone {
	candidates := make([]Zone, 0, len(idx.always))
	for _, i := range idx.always {
		candidates = append(candidates, idx.zones[i])
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), indexResolution)
	if err != nil {
		// Index unusable for this point; fall back to the full set.
		return idx.zones
	}
	for _, i := range idx.cells[cell] {
		candidates = append(candidates, idx.zones[i])
	}
	return candidates
}

// Classify runs ClassifyPoint over the prefiltered candidates.
func (idx *SpatialIndex) Classify(p geo.Point, strategy ConflictStrategy) *Zone {
	return ClassifyPoint(p, idx.Candidates(p), strategy)
}

// coverCells returns the H3 disk covering the zone's bounding circle.
func coverCells(z Zone) ([]h3.Cell, bool) {
	center := z.ReferencePoint()
	radiusKm := z.EffectiveRadiusKm()

	if z.Type == ZoneTypePolygon {
		ring := z.RingPoints()
		if len(ring) == 0 {
			return nil, false
		}
		for _, pt := range ring {
			if d := geo.Distance(center, pt); d > radiusKm {
				radiusKm = d
			}
		}
	}

	origin, err := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lng), indexResolution)
	if err != nil {
		return nil, false
	}

	k := int(math.Ceil(radiusKm/indexCellEdgeKm)) + 1
	cells, err := origin.GridDisk(k)
	if err != nil {
		return nil, false
	}
	return cells, true
}
