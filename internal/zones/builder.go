package zones

import (
	"sync"

	"github.com/banshee-data/velocity.tags/internal/hdmap"
	"github.com/banshee-data/velocity.tags/internal/monitoring"
	"github.com/paulmach/orb"
)

// Builder turns map geometry into a zone Table.
type Builder struct {
	Map        *hdmap.Map
	Membership Membership

	// Logf receives recoverable geometry warnings. Defaults to a
	// monitoring logger with a "[zones]" prefix.
	Logf func(format string, v ...interface{})
}

// Build is shorthand for a Builder with the default logger.
func Build(m *hdmap.Map, membership Membership) *Table {
	b := &Builder{Map: m, Membership: membership}
	return b.Build()
}

// BuildStats summarises how a build treated member geometry.
type BuildStats struct {
	Members  int // members referenced by the membership table
	Missing  int // members whose id was not in the map
	Repaired int // self-intersecting rings replaced by their convex hull
	Skipped  int // members with unusable geometry even after repair
	Unmerged int // zones whose union failed and kept their member rings
	Empty    int // zones that ended with no polygons
}

// Build constructs the Table. It never fails: missing or unusable member
// geometry is logged and skipped, and a zone whose members are all
// unusable is kept with no polygons so point location never matches it.
func (b *Builder) Build() *Table {
	t, _ := b.BuildWithStats()
	return t
}

// BuildWithStats is Build plus counters for the warnings it logged.
func (b *Builder) BuildWithStats() (*Table, BuildStats) {
	logf := b.Logf
	if logf == nil {
		logf = monitoring.Component("zones")
	}

	var stats BuildStats
	names := b.Membership.Zones()
	polygons := make(map[string][]orb.Ring, len(names))
	for _, zone := range names {
		var rings []orb.Ring
		for _, id := range b.Membership.MembersOf(zone) {
			stats.Members++
			raw, ok := b.memberRing(zone, id)
			if !ok {
				stats.Missing++
				logf("zone %s: member %s not found in map, skipping", zone, id)
				continue
			}
			ring := cleanRing(raw)
			if !isSimple(ring) {
				hull := convexHull(ring)
				if len(hull) < 3 {
					stats.Skipped++
					logf("zone %s: member %s is degenerate (%d vertices), skipping", zone, id, len(ring))
					continue
				}
				stats.Repaired++
				logf("zone %s: member %s is self-intersecting, using convex hull", zone, id)
				ring = hull
			}
			rings = append(rings, ring)
		}

		union, merged := unionRings(rings)
		if !merged {
			stats.Unmerged++
			logf("zone %s: union of %d members lost area, keeping member rings", zone, len(rings))
		}
		polygons[zone] = union
		if len(union) == 0 {
			stats.Empty++
			logf("zone %s: no usable polygons", zone)
		}
	}
	return NewTable(names, polygons), stats
}

// memberRing returns the candidate ring for one member: the area boundary
// for intersections, otherwise the right lane boundary followed by the
// reversed left boundary.
func (b *Builder) memberRing(zone, id string) ([]orb.Point, bool) {
	if IsIntersection(zone) {
		area, ok := b.Map.Intersection(id)
		if !ok {
			return nil, false
		}
		return area.AreaBoundary, true
	}

	lane, ok := b.Map.Lane(id)
	if !ok {
		return nil, false
	}
	ring := make([]orb.Point, 0, len(lane.RightBoundary)+len(lane.LeftBoundary))
	ring = append(ring, lane.RightBoundary...)
	for i := len(lane.LeftBoundary) - 1; i >= 0; i-- {
		ring = append(ring, lane.LeftBoundary[i])
	}
	return ring, true
}

// Memo builds a Table at most once and hands the same frozen value to
// every caller. It is safe for concurrent use.
type Memo struct {
	once  sync.Once
	build func() (*Table, error)
	table *Table
	err   error
}

// NewMemo wraps a build function.
func NewMemo(build func() (*Table, error)) *Memo {
	return &Memo{build: build}
}

// Table returns the memoized table, building it on first use. A failed
// build is memoized too.
func (m *Memo) Table() (*Table, error) {
	m.once.Do(func() {
		m.table, m.err = m.build()
	})
	return m.table, m.err
}
