// Package tagreport summarises a batch of tagged tracks and renders the
// summary as an HTML page of bar charts.
package tagreport

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/banshee-data/velocity.tags/internal/tagging"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Counts aggregates tag and verdict frequencies over a batch.
type Counts struct {
	Tracks  int
	Skipped int // tracks whose analysis failed
	Frames  int
	Matched int // windows whose turn equals the target

	ActionTags map[string]int
	SpeedTags  map[string]int
	Verdicts   map[tagging.TurnTag]int
}

// Count tallies results. Failed tracks only count towards Tracks and
// Skipped.
func Count(results []tagging.TrackResult) Counts {
	c := Counts{
		ActionTags: make(map[string]int),
		SpeedTags:  make(map[string]int),
		Verdicts:   make(map[tagging.TurnTag]int),
	}
	for _, res := range results {
		c.Tracks++
		if res.Err != nil {
			c.Skipped++
			continue
		}
		for _, ft := range res.Frames {
			c.Frames++
			for _, tag := range ft.ActionTags {
				c.ActionTags[tag]++
			}
			for _, tag := range ft.SpeedTags {
				c.SpeedTags[tag]++
			}
		}
		for _, v := range res.Verdicts {
			c.Verdicts[v.TurnTag]++
			if v.Matched {
				c.Matched++
			}
		}
	}
	return c
}

// ranked returns the keys of m by descending count, ties by name.
func ranked(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func barChart(title, subtitle string, counts map[string]int) *charts.Bar {
	keys := ranked(counts)
	data := make([]opts.BarData, len(keys))
	for i, k := range keys {
		data[i] = opts.BarData{Value: counts[k]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(keys).AddSeries("frames", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

// Render writes an HTML page with one chart each for action tags, speed
// tags and window verdicts.
func Render(w io.Writer, title string, c Counts) error {
	verdicts := make(map[string]int, len(c.Verdicts))
	for tag, n := range c.Verdicts {
		verdicts[string(tag)] = n
	}

	sub := fmt.Sprintf("tracks=%d skipped=%d frames=%d", c.Tracks, c.Skipped, c.Frames)
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(
		barChart("Action tags", sub, c.ActionTags),
		barChart("Speed tags", sub, c.SpeedTags),
		barChart("Window verdicts", fmt.Sprintf("matched=%d", c.Matched), verdicts),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteFile renders the report to path.
func WriteFile(path, title string, c Counts) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	if err := Render(f, title, c); err != nil {
		return err
	}
	return f.Close()
}
