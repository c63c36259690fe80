package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

var (
	ageNumeric       = dataset.NumericName("Age")
	frequencyNumeric = dataset.NumericName("Frequency")
)

// AgeFrequencyCorrelation returns the Pearson coefficient of x and y over the
// rows where both are present. It is NaN with fewer than two such pairs or
// when either side has zero variance.
func AgeFrequencyCorrelation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make(stats.Float64Data, 0, n)
	ys := make(stats.Float64Data, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	// stats reports zero variance as a coefficient of 0.
	sx, err := stats.StandardDeviationPopulation(xs)
	if err != nil || sx == 0 {
		return math.NaN()
	}
	sy, err := stats.StandardDeviationPopulation(ys)
	if err != nil || sy == 0 {
		return math.NaN()
	}

	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return math.NaN()
	}
	// Rounding can push a perfect correlation a hair past ±1.
	return math.Max(-1, math.Min(1, r))
}

// AgeFrequencyAnalyzer correlates Age with Frequency and saves a scatter chart.
type AgeFrequencyAnalyzer struct {
	base
}

// NewAgeFrequencyAnalyzer creates the age-vs-frequency analyzer
func NewAgeFrequencyAnalyzer(out *exporter.ArtifactWriter, logger *slog.Logger) *AgeFrequencyAnalyzer {
	return &AgeFrequencyAnalyzer{base: newBase(AgeVsFrequencyName, out, logger, ageNumeric, frequencyNumeric)}
}

// Analyze computes the correlation and writes age_vs_frequency.png. Rows
// missing one side are excluded from the coefficient; they cannot be drawn
// either, so the chart holds the complete pairs.
func (a *AgeFrequencyAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if res := a.precheck(ctx, ds); res != nil {
		return res, nil
	}

	age, err := numeric(ds, ageNumeric)
	if err != nil {
		return nil, err
	}
	freq, err := numeric(ds, frequencyNumeric)
	if err != nil {
		return nil, err
	}

	corr := AgeFrequencyCorrelation(age, freq)
	summary := fmt.Sprintf("Correlation between Age and Frequency: %s", formatFloat(corr, 2))
	a.logger.InfoContext(ctx, summary,
		floatAttr("correlation", corr),
		slog.Bool("defined", !math.IsNaN(corr)))

	points := make([]exporter.Point, len(age))
	for i := range age {
		points[i] = exporter.Point{X: age[i], Y: freq[i]}
	}
	path, err := a.out.WriteScatterPNG(AgeVsFrequencyFile, exporter.ScatterChart{
		Title:  "Age vs Frequency of Cold Drink Consumption",
		XLabel: "Age",
		YLabel: "Frequency",
		Points: points,
	})
	if err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}

	res := a.completed(summary, path)
	res.Correlation = &corr
	return res, nil
}
