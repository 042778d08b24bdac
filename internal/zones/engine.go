package zones

import (
	"sort"

	"github.com/chauffio/chauffio/pkg/geo"
)

// ClassifyPoint returns the single winning zone for a point, or nil when no
// active zone contains it. The strategy resolves conflicts between multiple
// containing zones; the zero strategy keeps specificity order.
func ClassifyPoint(p geo.Point, zones []Zone, strategy ConflictStrategy) *Zone {
	matches := ClassifyPointAll(p, zones, strategy)
	if len(matches) == 0 {
		return nil
	}
	winner := matches[0]
	return &winner
}

// ClassifyPointAll returns every active zone containing the point, ordered by
// the given conflict strategy (best first).
func ClassifyPointAll(p geo.Point, zones []Zone, strategy ConflictStrategy) []Zone {
	var matches []Zone
	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		if z.Contains(p) {
			matches = append(matches, z)
		}
	}

	if len(matches) < 2 {
		return matches
	}

	orderMatches(p, matches, strategy)
	return matches
}

// orderMatches sorts in place, best candidate first. Sorting is stable so
// equal candidates keep specificity order, which specificitySort establishes
// as the baseline for every strategy.
func orderMatches(p geo.Point, matches []Zone, strategy ConflictStrategy) {
	specificitySort(matches)

	switch strategy {
	case StrategyPriority:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].PriorityValue() > matches[j].PriorityValue()
		})
	case StrategyMostExpensive:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Multiplier() > matches[j].Multiplier()
		})
	case StrategyClosest:
		sort.SliceStable(matches, func(i, j int) bool {
			return geo.Distance(p, matches[i].ReferencePoint()) < geo.Distance(p, matches[j].ReferencePoint())
		})
	case StrategyCombined:
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].PriorityValue() != matches[j].PriorityValue() {
				return matches[i].PriorityValue() > matches[j].PriorityValue()
			}
			return matches[i].Multiplier() > matches[j].Multiplier()
		})
	}
}

// specificitySort orders POINT first, then RADIUS ascending by radius, then
// POLYGON.
func specificitySort(matches []Zone) {
	rank := func(z Zone) int {
		switch z.Type {
		case ZoneTypePoint:
			return 0
		case ZoneTypeRadius:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := rank(matches[i]), rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		if matches[i].Type == ZoneTypeRadius && matches[j].Type == ZoneTypeRadius {
			return matches[i].RadiusKm < matches[j].RadiusKm
		}
		return false
	})
}
