package tagging

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// Contract violations. Callers test with errors.Is.
var (
	ErrEmptyTrajectory  = errors.New("empty trajectory")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnorderedFrames  = errors.New("frames not strictly increasing")
)

// TrajectoryPoint is one per-frame kinematic record of a track.
type TrajectoryPoint struct {
	Frame int

	// Position in the origin-shifted map frame (metres)
	X, Y float64

	// Heading in degrees, [0, 360) after NormalizeHeading
	Heading float64

	// Body-frame velocity (m/s) and acceleration (m/s²)
	LonVelocity     float64
	LatVelocity     float64
	LonAcceleration float64
	LatAcceleration float64
}

// XY returns the planar position.
func (p TrajectoryPoint) XY() orb.Point { return orb.Point{p.X, p.Y} }

// Speed returns the planar speed.
func (p TrajectoryPoint) Speed() float64 { return math.Hypot(p.LonVelocity, p.LatVelocity) }

// NormalizeHeading maps any angle in degrees into [0, 360).
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

// wrapDelta returns the shortest signed angle from a to b, in [-180, 180].
func wrapDelta(a, b float64) float64 {
	d := b - a
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// Track is the frame-ordered history of one tracked vehicle.
type Track struct {
	ID     int
	Points []TrajectoryPoint
}

// TurnTag is the manoeuvre implied by a window's entry and exit zones.
type TurnTag string

const (
	TurnLeft     TurnTag = "left"
	TurnRight    TurnTag = "right"
	TurnStraight TurnTag = "straight"
	TurnNone     TurnTag = "none" // zones missing or pair not recognized
)

// ParseTurnTag converts a configured target name into a TurnTag.
func ParseTurnTag(s string) (TurnTag, bool) {
	switch TurnTag(s) {
	case TurnLeft, TurnRight, TurnStraight, TurnNone:
		return TurnTag(s), true
	}
	return TurnNone, false
}

// WindowVerdict is the outcome of one sliding window. Empty zone strings
// mean no stable zone was found.
type WindowVerdict struct {
	StartFrame int
	EndFrame   int
	StartZone  string
	EndZone    string
	TurnTag    TurnTag
	Matched    bool // TurnTag is recognized and equals the target
}

// Covers reports whether frame lies inside [StartFrame, EndFrame].
func (v WindowVerdict) Covers(frame int) bool {
	return frame >= v.StartFrame && frame <= v.EndFrame
}

// FrameTags is the output record for one (track, frame).
type FrameTags struct {
	TrackID    int
	Frame      int
	ActionTags []string
	SpeedTags  []string
}

// Action tags.
const (
	TagMoving          = "moving"
	TagWaiting         = "waiting"
	TagLaneChange      = "lane_change"
	TagLaneChangeLeft  = "lane_change_left"
	TagLaneChangeRight = "lane_change_right"
	TagTurningLeft     = "turning_left"
	TagTurningRight    = "turning_right"
)

// Speed tags.
const (
	TagStopped       = "stopped"
	TagSlow          = "slow"
	TagNormal        = "normal"
	TagFast          = "fast"
	TagAccelerating  = "accelerating"
	TagDecelerating  = "decelerating"
	TagConstantSpeed = "constant_speed"
)

// ZoneLocator answers the point queries the tagger needs. *zones.Locator
// implements it.
type ZoneLocator interface {
	ZoneOf(p orb.Point) (string, bool)
	DistanceToNearestIntersection(p orb.Point, maxDistance float64) (float64, bool)
}
