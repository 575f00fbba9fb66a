package tagging

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns 90% of GOMAXPROCS, at least 1.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0) * 9 / 10
	if n < 1 {
		n = 1
	}
	return n
}

// TagTracks analyses tracks in parallel on at most workers goroutines
// (DefaultWorkers when workers <= 0). Results are in input order. A track
// that fails analysis is not fatal: its result carries Err and no frames.
// Cancellation is checked before each track starts; a cancelled context
// returns ctx.Err() and no results.
func TagTracks(ctx context.Context, tagger *Tagger, tracks []Track, workers int) ([]TrackResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]TrackResult, len(tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range tracks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := tagger.AnalyzeTrack(tracks[i])
			if err != nil {
				res = TrackResult{TrackID: tracks[i].ID, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
