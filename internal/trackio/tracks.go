// Package trackio reads recorded vehicle tracks and writes per-frame tags as
// CSV.
package trackio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/velocity.tags/internal/monitoring"
	"github.com/banshee-data/velocity.tags/internal/tagging"
)

// TrackColumns are the columns ReadTracks requires. Any other columns in
// the file are ignored.
var TrackColumns = []string{
	"trackId", "frame", "xCenter", "yCenter", "heading",
	"lonVelocity", "latVelocity", "lonAcceleration", "latAcceleration",
}

// columnIndex maps each wanted column name to its position in header.
func columnIndex(header, wanted []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// Strip a UTF-8 BOM from the first cell.
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	var missing []string
	for _, w := range wanted {
		if _, ok := idx[w]; !ok {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// ReadTracks parses a tracks CSV into one Track per trackId. Tracks are
// ordered by id and points by frame; headings are normalized to [0, 360).
// A repeated (trackId, frame) row is logged and dropped; the first one wins.
func ReadTracks(r io.Reader) ([]tagging.Track, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty tracks file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col, err := columnIndex(header, TrackColumns)
	if err != nil {
		return nil, err
	}

	byID := make(map[int][]tagging.TrajectoryPoint)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[col["trackId"]]))
		if err != nil {
			return nil, fmt.Errorf("invalid trackId at line %d: %w", line, err)
		}
		frame, err := strconv.Atoi(strings.TrimSpace(record[col["frame"]]))
		if err != nil {
			return nil, fmt.Errorf("invalid frame at line %d: %w", line, err)
		}

		var vals [7]float64
		for i, name := range TrackColumns[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s at line %d: %w", name, line, err)
			}
			vals[i] = v
		}

		byID[id] = append(byID[id], tagging.TrajectoryPoint{
			Frame:           frame,
			X:               vals[0],
			Y:               vals[1],
			Heading:         tagging.NormalizeHeading(vals[2]),
			LonVelocity:     vals[3],
			LatVelocity:     vals[4],
			LonAcceleration: vals[5],
			LatAcceleration: vals[6],
		})
	}

	tracks := make([]tagging.Track, 0, len(byID))
	for id, pts := range byID {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Frame < pts[j].Frame })
		tracks = append(tracks, tagging.Track{ID: id, Points: dedupeFrames(id, pts)})
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks, nil
}

// LoadTracks reads a tracks CSV file.
func LoadTracks(path string) ([]tagging.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracks file: %w", err)
	}
	defer f.Close()

	tracks, err := ReadTracks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

// dedupeFrames drops points repeating the previous point's frame. pts must
// be sorted by frame.
func dedupeFrames(id int, pts []tagging.TrajectoryPoint) []tagging.TrajectoryPoint {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p.Frame == out[len(out)-1].Frame {
			monitoring.Logf("track %d: duplicate frame %d, keeping first row", id, p.Frame)
			continue
		}
		out = append(out, p)
	}
	return out
}
