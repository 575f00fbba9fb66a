// Package zoneplot renders zone polygons and trajectories to images for
// inspecting window verdicts.
package zoneplot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/velocity.tags/internal/tagging"
	"github.com/banshee-data/velocity.tags/internal/zones"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size of saved images.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 10 * vg.Inch
)

var (
	trajectoryColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	startColor      = color.RGBA{G: 160, A: 255}
	endColor        = color.RGBA{R: 200, A: 255}
)

// Title formats a verdict the way plots are titled.
func Title(trackID int, v tagging.WindowVerdict) string {
	orNone := func(z string) string {
		if z == "" {
			return "none"
		}
		return z
	}
	return fmt.Sprintf("Track %d frames %d-%d: %s -> %s (%s, match=%t)",
		trackID, v.StartFrame, v.EndFrame, orNone(v.StartZone), orNone(v.EndZone), v.TurnTag, v.Matched)
}

// New draws every zone of t, labelled at its centroid, with points over
// them. The first point is marked green and the last red.
func New(t *zones.Table, points []tagging.TrajectoryPoint, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	var labels plotter.XYLabels
	for i, name := range t.Names() {
		rings := t.Polygons(name)
		if len(rings) == 0 {
			continue
		}
		xys := make([]plotter.XYer, 0, len(rings))
		for _, r := range rings {
			xys = append(xys, ringXYs(r))
			c, _ := planar.CentroidArea(r)
			labels.XYs = append(labels.XYs, plotter.XY{X: c[0], Y: c[1]})
			labels.Labels = append(labels.Labels, name)
		}
		poly, err := plotter.NewPolygon(xys...)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", name, err)
		}
		fill := color.NRGBAModel.Convert(plotutil.Color(i)).(color.NRGBA)
		fill.A = 90
		poly.Color = fill
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}
	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("zone labels: %w", err)
		}
		p.Add(l)
	}

	if len(points) > 0 {
		pts := make(plotter.XYs, len(points))
		for i, tp := range points {
			pts[i] = plotter.XY{X: tp.X, Y: tp.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("trajectory: %w", err)
		}
		line.Color = trajectoryColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("trajectory", line)

		for _, m := range []struct {
			name string
			at   plotter.XY
			c    color.Color
		}{
			{"start", pts[0], startColor},
			{"end", pts[len(pts)-1], endColor},
		} {
			s, err := plotter.NewScatter(plotter.XYs{m.at})
			if err != nil {
				return nil, fmt.Errorf("%s marker: %w", m.name, err)
			}
			s.GlyphStyle = draw.GlyphStyle{Color: m.c, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
			p.Add(s)
			p.Legend.Add(m.name, s)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveWindow renders the points whose frames v covers and writes them as
// PNG into dir, returning the file path.
func SaveWindow(dir string, t *zones.Table, trackID int, points []tagging.TrajectoryPoint, v tagging.WindowVerdict) (string, error) {
	var window []tagging.TrajectoryPoint
	for _, tp := range points {
		if v.Covers(tp.Frame) {
			window = append(window, tp)
		}
	}
	if len(window) == 0 {
		return "", fmt.Errorf("no points of track %d in frames %d-%d", trackID, v.StartFrame, v.EndFrame)
	}
	p, err := New(t, window, Title(trackID, v))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("track_%04d_%05d.png", trackID, v.StartFrame))
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return "", fmt.Errorf("failed to save plot: %w", err)
	}
	return path, nil
}

func ringXYs(r orb.Ring) plotter.XYs {
	xys := make(plotter.XYs, len(r))
	for i, pt := range r {
		xys[i] = plotter.XY{X: pt[0], Y: pt[1]}
	}
	return xys
}
