package exporter

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChart(points ...Point) ScatterChart {
	return ScatterChart{
		Title:  "Age vs Frequency of Cold Drink Consumption",
		XLabel: "Age",
		YLabel: "Frequency",
		Points: points,
	}
}

func TestScatterChart_Plottable(t *testing.T) {
	chart := sampleChart(
		Point{X: 25, Y: 3},
		Point{X: math.NaN(), Y: 1},
		Point{X: 40, Y: math.NaN()},
		Point{X: math.Inf(1), Y: 2},
		Point{X: 40, Y: 1},
	)

	pts := chart.Plottable()
	require.Len(t, pts, 2)
	assert.Equal(t, 25.0, pts[0].X)
	assert.Equal(t, 40.0, pts[1].X)
}

func TestScatterChart_WritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleChart(Point{X: 25, Y: 3}, Point{X: 40, Y: 1}).WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy(), "default chart is square")
}

func TestScatterChart_NoPlottablePoints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleChart(Point{X: math.NaN(), Y: math.NaN()}).WritePNG(&buf))

	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestArtifactWriter_WriteScatterPNG_Deterministic(t *testing.T) {
	writer, _ := setupWriter(t)
	chart := sampleChart(Point{X: 25, Y: 3}, Point{X: 40, Y: 1}, Point{X: 31, Y: 2})

	path, err := writer.WriteScatterPNG("age_vs_frequency.png", chart)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = writer.WriteScatterPNG("age_vs_frequency.png", chart)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "re-rendering must produce identical bytes")
}
