package exporter

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Point is one scatter observation. NaN coordinates mark missing values.
type Point struct {
	X, Y float64
}

// ScatterChart describes a single-series scatter plot
type ScatterChart struct {
	Title  string
	XLabel string
	YLabel string
	Points []Point
	Width  vg.Length
	Height vg.Length
}

// DefaultChartSize is the edge length of saved charts
const DefaultChartSize = 4 * vg.Inch

// Plottable returns the points with both coordinates finite; the rest cannot
// be drawn.
func (c ScatterChart) Plottable() plotter.XYs {
	pts := make(plotter.XYs, 0, len(c.Points))
	for _, p := range c.Points {
		if isFinite(p.X) && isFinite(p.Y) {
			pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
		}
	}
	return pts
}

// WritePNG renders the chart as PNG to out
func (c ScatterChart) WritePNG(out io.Writer) error {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	if pts := c.Plottable(); len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		s.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
	}

	width, height := c.Width, c.Height
	if width == 0 {
		width = DefaultChartSize
	}
	if height == 0 {
		height = DefaultChartSize
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// WriteScatterPNG renders chart into the results directory and returns the
// full path of the image
func (w *ArtifactWriter) WriteScatterPNG(name string, chart ScatterChart) (string, error) {
	fullPath := w.Path(name)

	w.logger.Debug("Writing chart",
		slog.String("full_path", fullPath),
		slog.Int("points", len(chart.Points)),
		slog.Int("plotted", len(chart.Plottable())))

	if err := writeAtomic(fullPath, chart.WritePNG); err != nil {
		return "", err
	}
	return fullPath, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
