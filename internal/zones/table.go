package zones

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Table maps zone names to closed polygon rings. Enumeration order is
// fixed at construction. A Table is immutable: accessors hand out copies
// and package code only reads the unexported fields.
type Table struct {
	names    []string
	polygons map[string][]orb.Ring
	bounds   map[string][]orb.Bound
}

// NewTable builds a Table from zone names (in enumeration order) and their
// rings. Rings are copied and closed; rings with fewer than three distinct
// vertices are dropped. A name listed twice keeps its first position.
// Names missing from polygons become zones with no polygons.
func NewTable(names []string, polygons map[string][]orb.Ring) *Table {
	t := &Table{
		polygons: make(map[string][]orb.Ring, len(names)),
		bounds:   make(map[string][]orb.Bound, len(names)),
	}
	for _, name := range names {
		if _, dup := t.polygons[name]; dup {
			continue
		}
		t.names = append(t.names, name)
		rings := make([]orb.Ring, 0, len(polygons[name]))
		bounds := make([]orb.Bound, 0, len(polygons[name]))
		for _, r := range polygons[name] {
			open := cleanRing(r)
			if len(open) < 3 {
				continue
			}
			closed := closeRing(open)
			rings = append(rings, closed)
			bounds = append(bounds, closed.Bound())
		}
		t.polygons[name] = rings
		t.bounds[name] = bounds
	}
	return t
}

// Names returns the zone names in enumeration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of zones, including zones without polygons.
func (t *Table) Len() int { return len(t.names) }

// Polygons returns a copy of a zone's rings; nil for unknown zones.
func (t *Table) Polygons(zone string) []orb.Ring {
	rings, ok := t.polygons[zone]
	if !ok {
		return nil
	}
	out := make([]orb.Ring, len(rings))
	for i, r := range rings {
		out[i] = r.Clone()
	}
	return out
}

// Bound returns the bounding box of every ring in the table.
func (t *Table) Bound() (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, name := range t.names {
		for _, rb := range t.bounds[name] {
			if !found {
				b, found = rb, true
				continue
			}
			b = b.Union(rb)
		}
	}
	return b, found
}

// FeatureCollection exports every ring as a GeoJSON polygon feature with
// "zone" and "kind" properties, in enumeration order.
func (t *Table) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, name := range t.names {
		kind := "lane_group"
		if IsIntersection(name) {
			kind = "intersection"
		}
		for _, r := range t.polygons[name] {
			f := geojson.NewFeature(orb.Polygon{r.Clone()})
			f.Properties["zone"] = name
			f.Properties["kind"] = kind
			fc.Append(f)
		}
	}
	return fc
}
