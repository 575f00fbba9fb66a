// Package hdmap decodes the lane-level map archive consumed by the zone
// builder: lane segments with left/right boundary polylines and drivable
// areas (intersections) with an area boundary polyline.
//
// All coordinates are shifted by the recording origin on load so that the
// zone table and the tracks share one planar frame in metres.
package hdmap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
)

// LaneSegment is one lanelet with its two boundary polylines.
type LaneSegment struct {
	ID            string
	LeftBoundary  []orb.Point
	RightBoundary []orb.Point
}

// Intersection is a drivable area described by a closed boundary polyline.
type Intersection struct {
	ID           string
	AreaBoundary []orb.Point
}

// Map is the decoded archive. Lookups are by string id.
type Map struct {
	Lanes         map[string]LaneSegment
	Intersections map[string]Intersection
}

// Lane returns the lane segment with the given id.
func (m *Map) Lane(id string) (LaneSegment, bool) {
	if m == nil {
		return LaneSegment{}, false
	}
	l, ok := m.Lanes[id]
	return l, ok
}

// Intersection returns the drivable area with the given id.
func (m *Map) Intersection(id string) (Intersection, bool) {
	if m == nil {
		return Intersection{}, false
	}
	a, ok := m.Intersections[id]
	return a, ok
}

type archivePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

type archiveLane struct {
	LeftLaneBoundary  []archivePoint `json:"left_lane_boundary"`
	RightLaneBoundary []archivePoint `json:"right_lane_boundary"`
}

type archiveArea struct {
	AreaBoundary []archivePoint `json:"area_boundary"`
}

type archive struct {
	LaneSegments  map[string]archiveLane `json:"lane_segments"`
	DrivableAreas map[string]archiveArea `json:"drivable_areas"`
}

// Decode reads a map archive and shifts every point by -origin.
func Decode(r io.Reader, origin orb.Point) (*Map, error) {
	var a archive
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode map archive: %w", err)
	}

	m := &Map{
		Lanes:         make(map[string]LaneSegment, len(a.LaneSegments)),
		Intersections: make(map[string]Intersection, len(a.DrivableAreas)),
	}
	for id, lane := range a.LaneSegments {
		m.Lanes[id] = LaneSegment{
			ID:            id,
			LeftBoundary:  shift(lane.LeftLaneBoundary, origin),
			RightBoundary: shift(lane.RightLaneBoundary, origin),
		}
	}
	for id, area := range a.DrivableAreas {
		m.Intersections[id] = Intersection{
			ID:           id,
			AreaBoundary: shift(area.AreaBoundary, origin),
		}
	}
	return m, nil
}

// LoadFile reads a map archive from disk.
func LoadFile(path string, origin orb.Point) (*Map, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open map archive: %w", err)
	}
	defer f.Close()
	return Decode(f, origin)
}

func shift(pts []archivePoint, origin orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.X - origin[0], p.Y - origin[1]}
	}
	return out
}
