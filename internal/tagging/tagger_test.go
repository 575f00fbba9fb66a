package tagging

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTrackLeftTurnScenario(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())

	res, err := tagger.AnalyzeTrack(Track{ID: 7, Points: leftTurnTrack()})
	require.NoError(t, err)
	assert.Equal(t, 7, res.TrackID)
	assert.Equal(t, 50, res.WindowSize, "default window sizes clamp to the track length")
	require.Len(t, res.Verdicts, 1)
	assert.Equal(t, TurnLeft, res.Verdicts[0].TurnTag)
	require.Len(t, res.Frames, 50)

	for _, ft := range res.Frames {
		assert.Equal(t, 7, ft.TrackID)
		inIntersection := ft.Frame >= 20 && ft.Frame < 30
		assert.Equal(t, inIntersection, hasTag(ft.ActionTags, TagTurningLeft), "frame %d: %v", ft.Frame, ft.ActionTags)
		assert.False(t, hasTag(ft.ActionTags, TagTurningRight), "frame %d", ft.Frame)
		// The heading-based turning_left tag is confined to the intersection
		// frames. The window tag "left" comes from the verdict covering frames
		// 0-49, so the straight-zone frames carry it as well.
		assert.True(t, hasTag(ft.ActionTags, string(TurnLeft)), "frame %d carries the window verdict", ft.Frame)
		assert.False(t, hasTag(ft.ActionTags, TagLaneChange), "frame %d", ft.Frame)
	}

	if diff := cmp.Diff([]string{TagMoving, TagTurningLeft, string(TurnLeft)}, res.Frames[25].ActionTags); diff != "" {
		t.Errorf("frame 25 action tags (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{TagNormal, TagConstantSpeed}, res.Frames[25].SpeedTags)
}

func TestAnalyzeTrackContract(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())
	_, err := tagger.AnalyzeTrack(Track{ID: 3})
	assert.True(t, errors.Is(err, ErrEmptyTrajectory))

	cfg := DefaultConfig()
	cfg.WindowSizes = nil
	_, err = NewTagger(crossroads(), cfg).AnalyzeTrack(Track{ID: 3, Points: leftTurnTrack()})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestAnalyzeTrackRejectsRepeatedFrames(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())

	points := leftTurnTrack()
	points[11].Frame = points[10].Frame
	_, err := tagger.AnalyzeTrack(Track{ID: 4, Points: points})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnorderedFrames))
	assert.Contains(t, err.Error(), "track 4")

	points = leftTurnTrack()
	points[3], points[4] = points[4], points[3]
	_, err = tagger.AnalyzeTrack(Track{ID: 4, Points: points})
	assert.True(t, errors.Is(err, ErrUnorderedFrames))
}

// laneTrack drives along the west approach, in one lane for before frames
// and the other for after frames.
func laneTrack(from, to orb.Point, before, after int) []TrajectoryPoint {
	var xy []orb.Point
	for i := 0; i < before; i++ {
		xy = append(xy, orb.Point{-99 + 0.5*float64(i), from[1]})
	}
	for i := 0; i < after; i++ {
		xy = append(xy, orb.Point{-99 + 0.5*float64(before+i), to[1]})
	}
	return pointsAt(0, xy, make([]float64, len(xy)))
}

func TestTagFramesLaneChange(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())
	frames := tagger.TagFrames(1, laneTrack(inRI1, inRI2, 20, 20), nil)
	require.Len(t, frames, 40)

	for _, ft := range frames {
		if ft.Frame < 22 {
			assert.False(t, hasTag(ft.ActionTags, TagLaneChange), "frame %d: %v", ft.Frame, ft.ActionTags)
			continue
		}
		assert.Equal(t, []string{TagMoving, TagLaneChangeRight, TagLaneChange}, ft.ActionTags, "frame %d", ft.Frame)
	}

	frames = tagger.TagFrames(1, laneTrack(inRI2, inRI1, 20, 20), nil)
	assert.Equal(t, []string{TagMoving, TagLaneChangeLeft, TagLaneChange}, frames[30].ActionTags)
}

func TestTagFramesLaneChangeAgesOut(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())
	frames := tagger.TagFrames(1, laneTrack(inRI1, inRI2, 20, 70), nil)

	assert.True(t, hasTag(frames[50].ActionTags, TagLaneChange))
	// Sixty previous frames all in RI_2: the old lane is out of the lookback.
	assert.False(t, hasTag(frames[89].ActionTags, TagLaneChange))
}

func TestTagFramesLaneChangeNeedsHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LaneChangeMinHistory = 30
	frames := NewTagger(crossroads(), cfg).TagFrames(1, laneTrack(inRI1, inRI2, 20, 20), nil)
	assert.False(t, hasTag(frames[25].ActionTags, TagLaneChange))
	assert.True(t, hasTag(frames[30].ActionTags, TagLaneChange))
}

// spinTrack holds position p while heading falls 10° per frame.
func spinTrack(p orb.Point, n int) []TrajectoryPoint {
	xy := repeat(p, n)
	headings := make([]float64, n)
	for i := range headings {
		headings[i] = NormalizeHeading(-10 * float64(i))
	}
	return pointsAt(0, xy, headings)
}

func TestTagFramesHeadingTurnNearIntersection(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())

	// 2 m east of INT_1 and in no zone.
	frames := tagger.TagFrames(1, spinTrack(orb.Point{12, 0}, 20), nil)
	for _, ft := range frames {
		assert.Equal(t, ft.Frame >= 10, hasTag(ft.ActionTags, TagTurningRight), "frame %d: %v", ft.Frame, ft.ActionTags)
	}

	// 4 m east is beyond the default proximity.
	frames = tagger.TagFrames(1, spinTrack(orb.Point{14, 0}, 20), nil)
	for _, ft := range frames {
		assert.False(t, hasTag(ft.ActionTags, TagTurningRight), "frame %d", ft.Frame)
	}
}

func TestTagFramesHeadingWrapsAcrossNorth(t *testing.T) {
	n := 20
	headings := make([]float64, n)
	for i := range headings {
		headings[i] = NormalizeHeading(350 + float64(i))
	}
	points := pointsAt(0, repeat(inINT, n), headings)

	frames := NewTagger(crossroads(), DefaultConfig()).TagFrames(1, points, nil)
	// Ten 1° steps through 0° sum to +10°, not -350°.
	assert.True(t, hasTag(frames[10].ActionTags, TagTurningLeft), "%v", frames[10].ActionTags)
	assert.False(t, hasTag(frames[10].ActionTags, TagTurningRight))
}

func TestTagFramesWindowTags(t *testing.T) {
	points := pointsAt(0, repeat(outside, 12), make([]float64, 12))
	for i := range points {
		points[i].LonVelocity = 0
	}
	verdicts := []WindowVerdict{
		{StartFrame: 5, EndFrame: 8, TurnTag: TurnStraight},
		{StartFrame: 0, EndFrame: 11, TurnTag: TurnNone},
		{StartFrame: 7, EndFrame: 9, TurnTag: TurnStraight},
	}

	frames := NewTagger(crossroads(), DefaultConfig()).TagFrames(4, points, verdicts)
	for _, ft := range frames {
		want := []string{TagWaiting}
		if ft.Frame >= 5 && ft.Frame <= 9 {
			want = append(want, string(TurnStraight))
		}
		assert.Equal(t, want, ft.ActionTags, "frame %d", ft.Frame)
		assert.Equal(t, []string{TagStopped, TagConstantSpeed}, ft.SpeedTags)
	}
}

func TestTagFramesStraightVerdictOverridesHeadingTurn(t *testing.T) {
	points := spinTrack(orb.Point{12, 0}, 20)
	verdicts := []WindowVerdict{{StartFrame: 12, EndFrame: 14, TurnTag: TurnStraight}}

	frames := NewTagger(crossroads(), DefaultConfig()).TagFrames(1, points, verdicts)
	assert.Equal(t, []string{TagMoving, TagTurningRight}, frames[11].ActionTags)
	assert.Equal(t, []string{TagMoving, string(TurnStraight)}, frames[13].ActionTags)
}

func TestTaggerWithRules(t *testing.T) {
	rules := TurnRules{Straight: map[[2]string]bool{{"RI", "RIV"}: true}}
	base := NewTagger(crossroads(), DefaultConfig())
	custom := base.WithRules(rules)

	res, err := custom.AnalyzeTrack(Track{ID: 1, Points: leftTurnTrack()})
	require.NoError(t, err)
	assert.Equal(t, TurnStraight, res.Verdicts[0].TurnTag)
	for _, ft := range res.Frames {
		assert.False(t, hasTag(ft.ActionTags, TagTurningLeft), "straight wins at frame %d", ft.Frame)
	}

	res, err = base.AnalyzeTrack(Track{ID: 1, Points: leftTurnTrack()})
	require.NoError(t, err)
	assert.Equal(t, TurnLeft, res.Verdicts[0].TurnTag, "base tagger unchanged")
}
