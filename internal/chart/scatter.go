// Package chart renders claims scatter plots with gonum/plot.
package chart

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/claimscope-cli/internal/claims"
)

// Supported output extensions.
var formats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true, ".eps": true,
}

// FileRenderer writes the scatter plot to Path. The format follows the
// file extension.
type FileRenderer struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

// NewFileRenderer returns a renderer with a 10x6 inch canvas unless sizes
// in inches are given.
func NewFileRenderer(path string, widthIn, heightIn float64) (*FileRenderer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return nil, eris.Errorf("unsupported plot format %q (use .png, .svg, .pdf or .jpg)", ext)
	}
	if widthIn <= 0 {
		widthIn = 10
	}
	if heightIn <= 0 {
		heightIn = 6
	}
	return &FileRenderer{Path: path, Width: vg.Length(widthIn) * vg.Inch, Height: vg.Length(heightIn) * vg.Inch}, nil
}

// Scatter implements claims.Plotter.
func (r *FileRenderer) Scatter(ctx context.Context, spec claims.ScatterSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := Build(spec)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "mkdir plot dir")
		}
	}
	if err := p.Save(r.Width, r.Height, r.Path); err != nil {
		return eris.Wrapf(err, "save plot %s", r.Path)
	}
	zap.L().Info("plot written", zap.String("path", r.Path), zap.Int("points", len(spec.Points)))
	return nil
}

// Build assembles the plot. Each series supplies both the marker color and
// the legend entry, so the legend always matches the markers.
func Build(spec claims.ScatterSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for _, series := range spec.Series {
		pts := spec.PointsFor(series.Program)
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, eris.Wrapf(err, "scatter %s", series.Label)
		}
		s.GlyphStyle.Color = series.Color
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(series.Label, s)
	}
	return p, nil
}

// Nop discards plots; use it for headless runs.
type Nop struct{}

// Scatter implements claims.Plotter.
func (Nop) Scatter(context.Context, claims.ScatterSpec) error { return nil }
