package zones

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// snapTolerance merges vertices closer than this distance.
	snapTolerance = 1e-5
	// probeOffset is how far either side of a sub-edge the union interior
	// is sampled. It must not exceed snapTolerance: boundaries closer than
	// the probe have to be merged, or both facing edges test as interior
	// and the chain cannot close.
	probeOffset = snapTolerance
)

type segment struct {
	a, b orb.Point
}

// at returns the point at parameter t along s, exact at both ends.
func (s segment) at(t float64) orb.Point {
	switch {
	case t <= 0:
		return s.a
	case t >= 1:
		return s.b
	}
	d := r2.Sub(vec(s.b), vec(s.a))
	return point(r2.Add(vec(s.a), r2.Scale(t, d)))
}

// splitParams returns the interior parameters along s where o crosses it,
// touches it or overlaps it collinearly.
func splitParams(s, o segment) []float64 {
	d := r2.Sub(vec(s.b), vec(s.a))
	e := r2.Sub(vec(o.b), vec(o.a))
	lenSq := r2.Dot(d, d)
	if lenSq == 0 {
		return nil
	}
	length := math.Sqrt(lenSq)
	tol := snapTolerance / length
	interior := func(t float64) bool { return t > tol && t < 1-tol }

	w := r2.Sub(vec(o.a), vec(s.a))
	denom := r2.Cross(d, e)
	if math.Abs(denom) <= orientEpsilon*length*r2.Norm(e) {
		// Parallel: only collinear overlaps split s.
		if math.Abs(r2.Cross(d, w))/length > snapTolerance {
			return nil
		}
		var out []float64
		for _, p := range [2]orb.Point{o.a, o.b} {
			t := r2.Dot(r2.Sub(vec(p), vec(s.a)), d) / lenSq
			if interior(t) {
				out = append(out, t)
			}
		}
		return out
	}

	t := r2.Cross(w, e) / denom
	u := r2.Cross(w, d) / denom
	uTol := snapTolerance / r2.Norm(e)
	if interior(t) && u >= -uTol && u <= 1+uTol {
		return []float64{t}
	}
	return nil
}

// vertexIndex assigns stable ids to points, merging any two points within
// snapTolerance of each other.
type vertexIndex struct {
	cells map[[2]int64][]int
	pts   []orb.Point
}

func newVertexIndex() *vertexIndex {
	return &vertexIndex{cells: make(map[[2]int64][]int)}
}

func (vi *vertexIndex) cell(p orb.Point) [2]int64 {
	return [2]int64{int64(math.Floor(p[0] / snapTolerance)), int64(math.Floor(p[1] / snapTolerance))}
}

func (vi *vertexIndex) id(p orb.Point) int {
	c := vi.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range vi.cells[[2]int64{c[0] + dx, c[1] + dy}] {
				if planar.Distance(vi.pts[i], p) <= snapTolerance {
					return i
				}
			}
		}
	}
	i := len(vi.pts)
	vi.pts = append(vi.pts, p)
	vi.cells[c] = append(vi.cells[c], i)
	return i
}

type directedEdge struct {
	from, to int
}

// unionRings merges simple rings into one closed counter-clockwise
// exterior ring per connected component. Holes are discarded. Output is
// ordered by the lower-left corner of each ring's bound.
//
// When the overlay cannot be completed (a boundary chain fails to close, or
// the result covers less than the largest input ring) the input rings are
// returned unmerged and merged is false.
//
// The union is computed by overlay: every edge is split wherever another
// edge crosses, touches or overlaps it; a sub-edge is kept when the union
// interior lies on exactly one side of it; kept sub-edges are chained into
// rings taking the sharpest left turn at shared vertices.
func unionRings(rings []orb.Ring) (out []orb.Ring, merged bool) {
	ccw := make([]orb.Ring, 0, len(rings))
	for _, r := range rings {
		if len(r) >= 3 {
			ccw = append(ccw, counterClockwise(r))
		}
	}
	switch len(ccw) {
	case 0:
		return nil, true
	case 1:
		return []orb.Ring{closeRing(ccw[0])}, true
	}

	var segs []segment
	for _, r := range ccw {
		for i := range r {
			segs = append(segs, segment{r[i], r[(i+1)%len(r)]})
		}
	}
	bounds := make([]orb.Bound, len(segs))
	for i, s := range segs {
		bounds[i] = orb.MultiPoint{s.a, s.b}.Bound().Pad(snapTolerance)
	}

	vi := newVertexIndex()
	seen := make(map[[2]int]bool)
	var undirected [][2]int
	for i, s := range segs {
		ts := []float64{0, 1}
		for j, o := range segs {
			if i == j || !bounds[i].Intersects(bounds[j]) {
				continue
			}
			ts = append(ts, splitParams(s, o)...)
		}
		sort.Float64s(ts)

		prev := vi.id(s.at(ts[0]))
		for _, t := range ts[1:] {
			cur := vi.id(s.at(t))
			if cur == prev {
				continue
			}
			key := [2]int{min(prev, cur), max(prev, cur)}
			if !seen[key] {
				seen[key] = true
				undirected = append(undirected, key)
			}
			prev = cur
		}
	}

	var edges []directedEdge
	for _, k := range undirected {
		p, q := vec(vi.pts[k[0]]), vec(vi.pts[k[1]])
		dir := r2.Unit(r2.Sub(q, p))
		normal := r2.Vec{X: -dir.Y, Y: dir.X}
		mid := r2.Scale(0.5, r2.Add(p, q))
		inLeft := insideAny(point(r2.Add(mid, r2.Scale(probeOffset, normal))), ccw)
		inRight := insideAny(point(r2.Sub(mid, r2.Scale(probeOffset, normal))), ccw)
		switch {
		case inLeft && !inRight:
			edges = append(edges, directedEdge{k[0], k[1]})
		case inRight && !inLeft:
			edges = append(edges, directedEdge{k[1], k[0]})
		}
	}

	out, complete := chainRings(edges, vi.pts)
	merged = complete && totalArea(out) >= largestArea(ccw)*(1-1e-9)-areaEpsilon
	if !merged {
		out = make([]orb.Ring, len(ccw))
		for i, r := range ccw {
			out[i] = closeRing(r)
		}
	}
	sortByCorner(out)
	return out, merged
}

func sortByCorner(rings []orb.Ring) {
	sort.SliceStable(rings, func(i, j int) bool {
		bi, bj := rings[i].Bound(), rings[j].Bound()
		if bi.Min[0] != bj.Min[0] {
			return bi.Min[0] < bj.Min[0]
		}
		return bi.Min[1] < bj.Min[1]
	})
}

func totalArea(rings []orb.Ring) float64 {
	var sum float64
	for _, r := range rings {
		sum += math.Abs(signedArea(r))
	}
	return sum
}

func largestArea(rings []orb.Ring) float64 {
	var best float64
	for _, r := range rings {
		best = math.Max(best, math.Abs(signedArea(r)))
	}
	return best
}

func insideAny(p orb.Point, rings []orb.Ring) bool {
	for _, r := range rings {
		if pointInRing(p, r) {
			return true
		}
	}
	return false
}

// chainRings links directed boundary edges into closed rings and keeps the
// counter-clockwise ones (exteriors). complete is false if any chain was
// left open.
func chainRings(edges []directedEdge, pts []orb.Point) (rings []orb.Ring, complete bool) {
	outgoing := make(map[int][]int)
	for i, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], i)
	}

	complete = true
	used := make([]bool, len(edges))
	for start := range edges {
		if used[start] {
			continue
		}
		origin := edges[start].from
		var ring orb.Ring
		cur := start
		closed := false
		for {
			used[cur] = true
			e := edges[cur]
			ring = append(ring, pts[e.from])
			if e.to == origin {
				closed = true
				break
			}
			next := leftmostTurn(e, outgoing[e.to], edges, used, pts)
			if next < 0 {
				break
			}
			cur = next
		}
		if !closed {
			complete = false
			continue
		}
		ring = dropCollinear(ring)
		if signedArea(ring) <= areaEpsilon {
			continue
		}
		rings = append(rings, closeRing(ring))
	}
	return rings, complete
}

// leftmostTurn picks the unused outgoing edge that turns most sharply to the
// left of in, which keeps components that only share a vertex apart.
func leftmostTurn(in directedEdge, candidates []int, edges []directedEdge, used []bool, pts []orb.Point) int {
	din := r2.Sub(vec(pts[in.to]), vec(pts[in.from]))
	best, bestAngle := -1, math.Inf(-1)
	for _, c := range candidates {
		if used[c] {
			continue
		}
		dout := r2.Sub(vec(pts[edges[c].to]), vec(pts[edges[c].from]))
		angle := math.Atan2(r2.Cross(din, dout), r2.Dot(din, dout))
		if angle > bestAngle {
			best, bestAngle = c, angle
		}
	}
	return best
}
