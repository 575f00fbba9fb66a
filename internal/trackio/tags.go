package trackio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/velocity.tags/internal/tagging"
)

// TagSeparator joins the tags of one list inside a CSV cell.
const TagSeparator = ";"

// TagHeader is the header row written by TagWriter.
var TagHeader = []string{"trackId", "frame", "action_tags", "speed_tags"}

// TagWriter writes frame tag records as CSV.
type TagWriter struct {
	w *csv.Writer
}

// NewTagWriter writes the header and returns a writer for records.
func NewTagWriter(w io.Writer) (*TagWriter, error) {
	tw := &TagWriter{w: csv.NewWriter(w)}
	if err := tw.w.Write(TagHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return tw, nil
}

// Write appends the records of one track.
func (tw *TagWriter) Write(frames []tagging.FrameTags) error {
	for _, ft := range frames {
		row := []string{
			strconv.Itoa(ft.TrackID),
			strconv.Itoa(ft.Frame),
			strings.Join(ft.ActionTags, TagSeparator),
			strings.Join(ft.SpeedTags, TagSeparator),
		}
		if err := tw.w.Write(row); err != nil {
			return fmt.Errorf("failed to write frame %d/%d: %w", ft.TrackID, ft.Frame, err)
		}
	}
	return nil
}

// Flush writes buffered rows and reports any write error.
func (tw *TagWriter) Flush() error {
	tw.w.Flush()
	return tw.w.Error()
}

// ReadTags parses CSV produced by TagWriter. Empty cells yield empty,
// non-nil tag lists.
func ReadTags(r io.Reader) ([]tagging.FrameTags, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty tags file")
	}
	col, err := columnIndex(records[0], TagHeader)
	if err != nil {
		return nil, err
	}

	out := make([]tagging.FrameTags, 0, len(records)-1)
	for i, rec := range records[1:] {
		id, err := strconv.Atoi(rec[col["trackId"]])
		if err != nil {
			return nil, fmt.Errorf("invalid trackId at line %d: %w", i+2, err)
		}
		frame, err := strconv.Atoi(rec[col["frame"]])
		if err != nil {
			return nil, fmt.Errorf("invalid frame at line %d: %w", i+2, err)
		}
		out = append(out, tagging.FrameTags{
			TrackID:    id,
			Frame:      frame,
			ActionTags: splitTags(rec[col["action_tags"]]),
			SpeedTags:  splitTags(rec[col["speed_tags"]]),
		})
	}
	return out, nil
}

func splitTags(cell string) []string {
	if cell == "" {
		return []string{}
	}
	return strings.Split(cell, TagSeparator)
}
