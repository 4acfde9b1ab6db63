package claims

import (
	"context"
	"image/color"
	"math"

	"github.com/KaramelBytes/claimscope-cli/internal/table"
)

// ScatterPoint is one claim plotted as AWP (X) against paid amount (Y).
type ScatterPoint struct {
	X, Y    float64
	Program bool
}

// Series binds a participation value to its legend label and marker color.
// Renderers must draw the legend from these entries.
type Series struct {
	Program bool
	Label   string
	Color   color.Color
}

// ScatterSpec is everything a renderer needs to draw the comparison plot.
type ScatterSpec struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	Points []ScatterPoint
}

// PointsFor returns the points belonging to one series.
func (s ScatterSpec) PointsFor(program bool) []ScatterPoint {
	var out []ScatterPoint
	for _, p := range s.Points {
		if p.Program == program {
			out = append(out, p)
		}
	}
	return out
}

// Plotter draws a scatter plot somewhere: a file, a window, or nowhere.
type Plotter interface {
	Scatter(ctx context.Context, spec ScatterSpec) error
}

// DefaultSeries colors 340B claims blue and the rest green.
func DefaultSeries() []Series {
	return []Series{
		{Program: true, Label: "340B", Color: color.NRGBA{R: 0, G: 0, B: 255, A: 153}},
		{Program: false, Label: "Non-340B", Color: color.NRGBA{R: 0, G: 128, B: 0, A: 153}},
	}
}

// PlotOptions controls which columns feed the scatter.
type PlotOptions struct {
	Columns Columns
	Number  table.NumberFormat
}

// BuildScatter extracts AWP/paid pairs from a merged table. Rows missing
// either coordinate are skipped.
func BuildScatter(t *table.Table, opt PlotOptions) (ScatterSpec, error) {
	cols := opt.Columns.withDefaults()
	xs, xok, err := t.Floats(cols.AWP, opt.Number)
	if err != nil {
		return ScatterSpec{}, err
	}
	ys, yok, err := t.Floats(cols.Paid, opt.Number)
	if err != nil {
		return ScatterSpec{}, err
	}
	flags, err := t.Column(cols.Flag)
	if err != nil {
		return ScatterSpec{}, err
	}
	spec := ScatterSpec{
		Title:  "AWP vs Paid Amount by 340B Status",
		XLabel: "AWP (Average Wholesale Price)",
		YLabel: "Paid Amount",
		Series: DefaultSeries(),
	}
	for i := range xs {
		if !xok[i] || !yok[i] || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		spec.Points = append(spec.Points, ScatterPoint{X: xs[i], Y: ys[i], Program: table.ParseBool(flags[i])})
	}
	return spec, nil
}

// PlotComparisons renders AWP against paid amount, colored by participation.
func PlotComparisons(ctx context.Context, t *table.Table, p Plotter, opt PlotOptions) error {
	spec, err := BuildScatter(t, opt)
	if err != nil {
		return err
	}
	return p.Scatter(ctx, spec)
}
