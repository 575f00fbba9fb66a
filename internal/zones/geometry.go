package zones

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"
)

// Geometric tolerances in map units (metres).
const (
	// orientEpsilon is the cross-product magnitude below which three
	// points are treated as collinear.
	orientEpsilon = 1e-9
	// areaEpsilon is the minimum absolute ring area for a usable polygon.
	areaEpsilon = 1e-9
)

func vec(p orb.Point) r2.Vec { return r2.Vec{X: p[0], Y: p[1]} }

func point(v r2.Vec) orb.Point { return orb.Point{v.X, v.Y} }

// orient returns the z component of (b-a) × (c-a): positive when a, b, c
// turn counter-clockwise.
func orient(a, b, c orb.Point) float64 {
	return r2.Cross(r2.Sub(vec(b), vec(a)), r2.Sub(vec(c), vec(a)))
}

// cleanRing drops consecutive duplicate vertices and a trailing closing
// vertex, returning an open ring.
func cleanRing(pts []orb.Point) orb.Ring {
	out := make(orb.Ring, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Equal(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// closeRing returns a copy of an open ring with the first vertex repeated
// at the end.
func closeRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	out = append(out, r...)
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		out = append(out, r[0])
	}
	return out
}

// signedArea is the shoelace area of an open or closed ring; positive for
// counter-clockwise winding.
func signedArea(r orb.Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}

// counterClockwise returns r wound counter-clockwise, copying if it has to
// reverse.
func counterClockwise(r orb.Ring) orb.Ring {
	if signedArea(r) >= 0 {
		return r
	}
	out := r.Clone()
	out.Reverse()
	return out
}

// isSimple reports whether an open ring is a valid simple polygon: at least
// three vertices, non-zero area, no edge crossing or touching a
// non-adjacent edge and no adjacent edges folding back on each other.
func isSimple(r orb.Ring) bool {
	n := len(r)
	if n < 3 || math.Abs(signedArea(r)) <= areaEpsilon {
		return false
	}
	for i := 0; i < n; i++ {
		a1, b1 := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			a2, b2 := r[j], r[(j+1)%n]
			switch {
			case j == i+1:
				if foldsBack(a1, b1, b2) {
					return false
				}
			case i == 0 && j == n-1:
				if foldsBack(a2, b2, b1) {
					return false
				}
			default:
				if segmentsTouch(a1, b1, a2, b2) {
					return false
				}
			}
		}
	}
	return true
}

// foldsBack reports whether the path a→b→c doubles back along itself.
func foldsBack(a, b, c orb.Point) bool {
	if math.Abs(orient(a, b, c)) > orientEpsilon {
		return false
	}
	return r2.Dot(r2.Sub(vec(b), vec(a)), r2.Sub(vec(c), vec(b))) < 0
}

// segmentsTouch reports whether closed segments p1p2 and p3p4 share any point.
func segmentsTouch(p1, p2, p3, p4 orb.Point) bool {
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)

	if opposite(d1, d2) && opposite(d3, d4) {
		return true
	}
	return (math.Abs(d1) <= orientEpsilon && onSegment(p3, p4, p1)) ||
		(math.Abs(d2) <= orientEpsilon && onSegment(p3, p4, p2)) ||
		(math.Abs(d3) <= orientEpsilon && onSegment(p1, p2, p3)) ||
		(math.Abs(d4) <= orientEpsilon && onSegment(p1, p2, p4))
}

func opposite(a, b float64) bool {
	return (a > orientEpsilon && b < -orientEpsilon) || (a < -orientEpsilon && b > orientEpsilon)
}

// onSegment assumes p is collinear with ab and checks it lies within the
// segment's bounding box.
func onSegment(a, b, p orb.Point) bool {
	return p[0] >= math.Min(a[0], b[0])-orientEpsilon && p[0] <= math.Max(a[0], b[0])+orientEpsilon &&
		p[1] >= math.Min(a[1], b[1])-orientEpsilon && p[1] <= math.Max(a[1], b[1])+orientEpsilon
}

// convexHull returns the open counter-clockwise hull of pts (Andrew's
// monotone chain). Collinear boundary points are dropped, so a degenerate
// input yields fewer than three vertices.
func convexHull(pts []orb.Point) orb.Ring {
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	if len(sorted) < 3 {
		return orb.Ring(sorted)
	}

	hull := make(orb.Ring, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && orient(hull[len(hull)-2], hull[len(hull)-1], p) <= orientEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && orient(hull[len(hull)-2], hull[len(hull)-1], p) <= orientEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point repeats the first.
	return hull[:len(hull)-1]
}

// pointInRing is the even-odd ray-casting test. The ring may be open or
// closed; a closing duplicate contributes a horizontal zero-length edge
// which never toggles parity.
func pointInRing(p orb.Point, ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := p[0], p[1]
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// dropCollinear removes vertices of an open ring that lie on the line
// through their neighbours.
func dropCollinear(r orb.Ring) orb.Ring {
	if len(r) < 4 {
		return r
	}
	out := make(orb.Ring, 0, len(r))
	n := len(r)
	for i := 0; i < n; i++ {
		prev, next := r[(i+n-1)%n], r[(i+1)%n]
		if math.Abs(orient(prev, r[i], next)) <= orientEpsilon {
			continue
		}
		out = append(out, r[i])
	}
	if len(out) < 3 {
		return r
	}
	return out
}
