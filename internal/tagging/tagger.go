package tagging

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/velocity.tags/internal/zones"
	"gonum.org/v1/gonum/floats"
)

// Tagger produces per-frame tag records for whole tracks. It holds no
// per-track state and is safe for concurrent use.
type Tagger struct {
	loc   ZoneLocator
	cfg   Config
	rules TurnRules
}

// NewTagger returns a Tagger reading zones from loc.
func NewTagger(loc ZoneLocator, cfg Config) *Tagger {
	return &Tagger{loc: loc, cfg: cfg, rules: DefaultTurnRules()}
}

// WithRules returns a copy of the tagger using different turn tables.
func (t *Tagger) WithRules(r TurnRules) *Tagger {
	cp := *t
	cp.rules = r
	return &cp
}

// Config returns the tagger's thresholds.
func (t *Tagger) Config() Config { return t.cfg }

// TrackResult is everything AnalyzeTrack learned about one track.
type TrackResult struct {
	TrackID    int
	WindowSize int // window size the fallback matcher settled on
	Verdicts   []WindowVerdict
	Frames     []FrameTags
	Err        error // set by TagTracks when the track was skipped
}

// AnalyzeTrack runs the fallback window matcher over the track and then
// tags every frame with the resulting verdicts.
func (t *Tagger) AnalyzeTrack(track Track) (TrackResult, error) {
	res := TrackResult{TrackID: track.ID}
	if len(track.Points) == 0 {
		return res, fmt.Errorf("track %d: %w", track.ID, ErrEmptyTrajectory)
	}
	for i := 1; i < len(track.Points); i++ {
		if track.Points[i].Frame <= track.Points[i-1].Frame {
			return res, fmt.Errorf("track %d: %w: frame %d follows %d",
				track.ID, ErrUnorderedFrames, track.Points[i].Frame, track.Points[i-1].Frame)
		}
	}

	zoneSeq := locateTrajectory(t.loc, track.Points)
	verdicts, size, err := matchWindowsFallback(zoneSeq, track.Points, t.rules, t.cfg.TargetTag,
		t.cfg.WindowSizes, t.cfg.SlideStep, t.cfg.StableMinFrames)
	if err != nil {
		return res, fmt.Errorf("track %d: %w", track.ID, err)
	}

	res.WindowSize = size
	res.Verdicts = verdicts
	res.Frames = t.tagFrames(track.ID, track.Points, zoneSeq, verdicts)
	return res, nil
}

// TagFrames returns one record per point, in order. Points must be sorted
// by frame. Verdicts are matched to frames by their inclusive frame range.
func (t *Tagger) TagFrames(trackID int, points []TrajectoryPoint, verdicts []WindowVerdict) []FrameTags {
	return t.tagFrames(trackID, points, locateTrajectory(t.loc, points), verdicts)
}

type historyEntry struct {
	zone    string
	heading float64
}

func (t *Tagger) tagFrames(trackID int, points []TrajectoryPoint, zoneSeq []string, verdicts []WindowVerdict) []FrameTags {
	hist := NewHistory[historyEntry](t.cfg.HistoryCapacity)
	out := make([]FrameTags, 0, len(points))

	for i, p := range points {
		zone := zoneSeq[i]
		tags := make([]string, 0, 6)

		if p.Speed() < t.cfg.MovingSpeedThreshold {
			tags = append(tags, TagWaiting)
		} else {
			tags = append(tags, TagMoving)
		}
		tags = append(tags, t.laneChangeTags(hist, zone)...)
		if tag, ok := t.headingTurn(hist, p, zone); ok {
			tags = append(tags, tag)
		}
		for _, v := range verdicts {
			if v.TurnTag != TurnNone && v.Covers(p.Frame) {
				tags = append(tags, string(v.TurnTag))
			}
		}

		out = append(out, FrameTags{
			TrackID:    trackID,
			Frame:      p.Frame,
			ActionTags: ResolveConflicts(DedupeTags(tags)),
			SpeedTags:  SpeedTags(p, t.cfg),
		})
		hist.Add(historyEntry{zone: zone, heading: p.Heading})
	}
	return out
}

// laneChangeTags looks for a stable lane near the start and near the end
// of the recent zone history. Two stable lanes on the same road with
// different lane indices mean a lane change; a higher index is to the
// right.
func (t *Tagger) laneChangeTags(hist *History[historyEntry], current string) []string {
	if hist.Size() < t.cfg.LaneChangeMinHistory {
		return nil
	}

	recent := hist.Recent(t.cfg.LaneChangeLookback)
	valid := make([]string, 0, len(recent)+1)
	for _, e := range recent {
		if e.zone != "" {
			valid = append(valid, e.zone)
		}
	}
	if current != "" {
		valid = append(valid, current)
	}
	if len(valid) < t.cfg.LaneChangeMinValid {
		return nil
	}

	start := stableFromStart(valid, t.cfg.LaneChangeStableRun, t.cfg.LaneChangeScanSpan)
	end := stableFromEnd(valid, t.cfg.LaneChangeStableRun, t.cfg.LaneChangeScanSpan)
	return laneChange(start, end)
}

func stableFromStart(seq []string, run, span int) string {
	for i := 0; i+run <= len(seq); i++ {
		count := 1
		for j := i + 1; j < i+span && j < len(seq); j++ {
			if seq[j] != seq[i] {
				break
			}
			count++
		}
		if count >= run {
			return seq[i]
		}
	}
	return ""
}

func stableFromEnd(seq []string, run, span int) string {
	for i := len(seq) - 1; i >= run-1; i-- {
		count := 1
		for j := i - 1; j > i-span && j >= 0; j-- {
			if seq[j] != seq[i] {
				break
			}
			count++
		}
		if count >= run {
			return seq[i]
		}
	}
	return ""
}

func laneChange(start, end string) []string {
	if start == "" || end == "" || start == end {
		return nil
	}
	startRoad, startLane, ok1 := zones.SplitName(start)
	endRoad, endLane, ok2 := zones.SplitName(end)
	if !ok1 || !ok2 || startRoad != endRoad {
		return nil
	}
	from, err1 := strconv.Atoi(startLane)
	to, err2 := strconv.Atoi(endLane)
	if err1 != nil || err2 != nil || from == to {
		return nil
	}
	if to > from {
		return []string{TagLaneChangeRight, TagLaneChange}
	}
	return []string{TagLaneChangeLeft, TagLaneChange}
}

// headingTurn sums wrapped heading changes over the recent history plus
// the current point. It only fires in or near an intersection; positive
// (counter-clockwise) change is a left turn.
func (t *Tagger) headingTurn(hist *History[historyEntry], p TrajectoryPoint, zone string) (string, bool) {
	if hist.Size() < t.cfg.TurnMinHistory || hist.Size() == 0 {
		return "", false
	}
	if !t.nearIntersection(p, zone) {
		return "", false
	}

	recent := hist.Recent(t.cfg.HeadingLookback)
	deltas := make([]float64, 0, len(recent))
	for i := 1; i < len(recent); i++ {
		deltas = append(deltas, wrapDelta(recent[i-1].heading, recent[i].heading))
	}
	last, _ := hist.Previous(1)
	deltas = append(deltas, wrapDelta(last.heading, p.Heading))

	sum := floats.Sum(deltas)
	switch {
	case sum > t.cfg.HeadingChangeThreshold:
		return TagTurningLeft, true
	case sum < -t.cfg.HeadingChangeThreshold:
		return TagTurningRight, true
	}
	return "", false
}

func (t *Tagger) nearIntersection(p TrajectoryPoint, zone string) bool {
	if zones.IsIntersection(zone) {
		return true
	}
	_, ok := t.loc.DistanceToNearestIntersection(p.XY(), t.cfg.IntersectionProximity)
	return ok
}
