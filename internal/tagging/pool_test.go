package tagging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagTracksPreservesOrder(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())

	var tracks []Track
	for id := 1; id <= 12; id++ {
		points := leftTurnTrack()
		if id%3 == 0 {
			points = laneTrack(inRI1, inRI2, 20, 20)
		}
		tracks = append(tracks, Track{ID: id, Points: points})
	}
	tracks = append(tracks, Track{ID: 99})

	results, err := TagTracks(context.Background(), tagger, tracks, 4)
	require.NoError(t, err)
	require.Len(t, results, len(tracks))

	for i, res := range results {
		assert.Equal(t, tracks[i].ID, res.TrackID)
		if tracks[i].ID == 99 {
			assert.True(t, errors.Is(res.Err, ErrEmptyTrajectory))
			assert.Empty(t, res.Frames)
			continue
		}
		require.NoError(t, res.Err)
		assert.Len(t, res.Frames, len(tracks[i].Points))
		for _, ft := range res.Frames {
			assert.Equal(t, tracks[i].ID, ft.TrackID)
		}
	}
}

func TestTagTracksRecordsRepeatedFrames(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())

	bad := leftTurnTrack()
	bad[6].Frame = bad[5].Frame
	tracks := []Track{{ID: 1, Points: leftTurnTrack()}, {ID: 2, Points: bad}}

	results, err := TagTracks(context.Background(), tagger, tracks, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.True(t, errors.Is(results[1].Err, ErrUnorderedFrames))
	assert.Empty(t, results[1].Frames)
}

func TestTagTracksMatchesSequential(t *testing.T) {
	tagger := NewTagger(crossroads(), DefaultConfig())
	tracks := []Track{
		{ID: 1, Points: leftTurnTrack()},
		{ID: 2, Points: laneTrack(inRI2, inRI1, 30, 30)},
	}

	parallel, err := TagTracks(context.Background(), tagger, tracks, 0)
	require.NoError(t, err)
	for i, tr := range tracks {
		want, err := tagger.AnalyzeTrack(tr)
		require.NoError(t, err)
		assert.Equal(t, want, parallel[i])
	}
}

func TestTagTracksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tagger := NewTagger(crossroads(), DefaultConfig())
	results, err := TagTracks(ctx, tagger, []Track{{ID: 1, Points: leftTurnTrack()}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}
