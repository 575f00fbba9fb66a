package tagging

import (
	"fmt"

	"github.com/paulmach/orb"
)

// FirstLastStableZone returns the first and last zone that the point
// sequence occupies for at least minFrames consecutive points. Points
// outside every zone break runs but never become stable. If no zone is
// ever stable both results are empty, which means "insufficient
// information" rather than "no turn".
func FirstLastStableZone(loc ZoneLocator, points []orb.Point, minFrames int) (first, last string, err error) {
	if len(points) == 0 {
		return "", "", ErrEmptyTrajectory
	}
	if minFrames < 1 {
		return "", "", fmt.Errorf("%w: minFrames must be at least 1, got %d", ErrInvalidParameter, minFrames)
	}
	first, last = stableZones(locateAll(loc, points), minFrames)
	return first, last, nil
}

// locateAll resolves every point to its zone name, "" when outside.
func locateAll(loc ZoneLocator, points []orb.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		if zone, ok := loc.ZoneOf(p); ok {
			out[i] = zone
		}
	}
	return out
}

func stableZones(zoneSeq []string, minFrames int) (first, last string) {
	prev := ""
	count := 0
	for _, zone := range zoneSeq {
		if zone != "" && zone == prev {
			count++
		} else {
			prev, count = zone, 1
		}
		if zone == "" || count < minFrames {
			continue
		}
		if first == "" {
			first = zone
		}
		last = zone
	}
	return first, last
}
