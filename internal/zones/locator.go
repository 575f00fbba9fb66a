package zones

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Locator answers point queries against a Table.
type Locator struct {
	table         *Table
	intersections []string
}

// NewLocator returns a Locator over t. The table is shared, not copied.
func NewLocator(t *Table) *Locator {
	l := &Locator{table: t}
	for _, name := range t.names {
		if IsIntersection(name) {
			l.intersections = append(l.intersections, name)
		}
	}
	return l
}

// Table returns the table the locator reads.
func (l *Locator) Table() *Table { return l.table }

// ZoneOf returns the first zone, in enumeration order, with a ring
// containing p. Overlapping zones resolve to the earlier name.
func (l *Locator) ZoneOf(p orb.Point) (string, bool) {
	for _, name := range l.table.names {
		bounds := l.table.bounds[name]
		for i, ring := range l.table.polygons[name] {
			if !bounds[i].Contains(p) {
				continue
			}
			if pointInRing(p, ring) {
				return name, true
			}
		}
	}
	return "", false
}

// DistanceToNearestIntersection returns the distance from p to the closest
// intersection ring edge, or 0 if p is inside one. The result is reported
// only when it does not exceed maxDistance.
func (l *Locator) DistanceToNearestIntersection(p orb.Point, maxDistance float64) (float64, bool) {
	best := math.Inf(1)
	for _, name := range l.intersections {
		for _, ring := range l.table.polygons[name] {
			d := ringDistance(p, ring)
			if d < best {
				best = d
			}
		}
	}
	if math.IsInf(best, 1) || best > maxDistance {
		return 0, false
	}
	return best, true
}

func ringDistance(p orb.Point, ring orb.Ring) float64 {
	if pointInRing(p, ring) {
		return 0
	}
	best := math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		d := planar.DistanceFromSegment(ring[i], ring[(i+1)%n], p)
		if d < best {
			best = d
		}
	}
	return best
}
