package chart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/claimscope-cli/internal/claims"
)

func sampleSpec() claims.ScatterSpec {
	return claims.ScatterSpec{
		Title:  "AWP vs Paid Amount by 340B Status",
		XLabel: "AWP",
		YLabel: "Paid",
		Series: claims.DefaultSeries(),
		Points: []claims.ScatterPoint{
			{X: 10, Y: 5, Program: true},
			{X: 12, Y: 11, Program: false},
			{X: 14, Y: 13, Program: false},
		},
	}
}

func TestFileRendererWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scatter.png")
	r, err := NewFileRenderer(path, 0, 0)
	require.NoError(t, err)

	require.NoError(t, r.Scatter(context.Background(), sampleSpec()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestNewFileRendererRejectsUnknownFormat(t *testing.T) {
	_, err := NewFileRenderer("plot.bmp", 0, 0)
	assert.Error(t, err)
}

func TestBuildSetsLabels(t *testing.T) {
	p, err := Build(sampleSpec())
	require.NoError(t, err)
	assert.Equal(t, "AWP vs Paid Amount by 340B Status", p.Title.Text)
	assert.Equal(t, "AWP", p.X.Label.Text)
}

func TestBuildSkipsEmptySeries(t *testing.T) {
	spec := sampleSpec()
	spec.Points = spec.PointsFor(false)
	_, err := Build(spec)
	require.NoError(t, err)
}

func TestScatterHonorsCancelledContext(t *testing.T) {
	r, err := NewFileRenderer(filepath.Join(t.TempDir(), "x.svg"), 4, 3)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Scatter(ctx, sampleSpec()), context.Canceled)
}

func TestNop(t *testing.T) {
	var p claims.Plotter = Nop{}
	assert.NoError(t, p.Scatter(context.Background(), sampleSpec()))
}
