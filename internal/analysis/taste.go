package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

var priceNumeric = dataset.NumericName("Price")

// PriceBin is a half-open price interval (Lower, Upper].
type PriceBin struct {
	Label string
	Lower float64
	Upper float64
}

// PriceBins are the fixed price ranges in report order.
var PriceBins = []PriceBin{
	{Label: "Low", Lower: 0, Upper: 10},
	{Label: "Medium", Lower: 10, Upper: 20},
	{Label: "High", Lower: 20, Upper: 30},
	{Label: "Premium", Lower: 30, Upper: 50},
}

// PriceRange returns the bin label for a price. Missing prices and prices
// outside (0, 50] are unbinned.
func PriceRange(price float64) (string, bool) {
	if math.IsNaN(price) {
		return "", false
	}
	for _, b := range PriceBins {
		if price > b.Lower && price <= b.Upper {
			return b.Label, true
		}
	}
	return "", false
}

// PriceRanges bins every price; unbinned prices become missing values.
func PriceRanges(prices []float64) []dataset.Value {
	out := make([]dataset.Value, len(prices))
	for i, p := range prices {
		if label, ok := PriceRange(p); ok {
			out[i] = dataset.Text(label)
		}
	}
	return out
}

// BinMean is the mean taste rating of one price range. Mean is NaN when no
// rated row falls in the bin.
type BinMean struct {
	Label string
	Mean  float64
	N     int
}

// MeanByPriceRange averages ratings per label in PriceBins order. Rows with a
// missing label or rating are ignored.
func MeanByPriceRange(labels []dataset.Value, ratings []float64) []BinMean {
	groups := make(map[string]stats.Float64Data, len(PriceBins))
	for i := range labels {
		if !labels[i].Valid || i >= len(ratings) || math.IsNaN(ratings[i]) {
			continue
		}
		groups[labels[i].S] = append(groups[labels[i].S], ratings[i])
	}

	out := make([]BinMean, len(PriceBins))
	for i, b := range PriceBins {
		data := groups[b.Label]
		mean, err := stats.Mean(data)
		if err != nil {
			mean = math.NaN()
		}
		out[i] = BinMean{Label: b.Label, Mean: mean, N: len(data)}
	}
	return out
}

// TasteByPriceRange bins prices and averages the taste ratings per bin.
func TasteByPriceRange(prices, ratings []float64) []BinMean {
	return MeanByPriceRange(PriceRanges(prices), ratings)
}

// TasteAnalyzer relates taste ratings to price ranges.
type TasteAnalyzer struct {
	base
}

// NewTasteAnalyzer creates the taste-vs-price analyzer
func NewTasteAnalyzer(out *exporter.ArtifactWriter, logger *slog.Logger) *TasteAnalyzer {
	return &TasteAnalyzer{base: newBase(TasteVsPriceName, out, logger, priceNumeric, ColTasteRating)}
}

// Analyze writes taste_ratings_vs_price_range.csv. The Price Range column it
// derives lives only in a private view of ds.
func (a *TasteAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if res := a.precheck(ctx, ds); res != nil {
		return res, nil
	}

	prices, err := numeric(ds, priceNumeric)
	if err != nil {
		return nil, err
	}
	view, err := ds.WithColumn(dataset.NewTextColumn(ColPriceRange, PriceRanges(prices)))
	if err != nil {
		return nil, fmt.Errorf("derive price range: %w", err)
	}

	labels, err := text(view, ColPriceRange)
	if err != nil {
		return nil, err
	}
	ratings, err := numeric(view, ColTasteRating)
	if err != nil {
		return nil, err
	}

	means := MeanByPriceRange(labels, ratings)
	records := make([][]string, len(means))
	parts := make([]string, len(means))
	for i, m := range means {
		records[i] = []string{m.Label, dataset.FormatNumber(m.Mean)}
		parts[i] = fmt.Sprintf("%s=%s", m.Label, formatFloat(m.Mean, 2))
	}
	summary := fmt.Sprintf("Average taste rating by price range: %s", strings.Join(parts, ", "))
	a.logger.InfoContext(ctx, summary, slog.Int("rows", ds.Len()))

	path, err := a.out.WriteSimpleCSV(TasteVsPriceFile, []string{ColPriceRange, ColTasteRating}, records)
	if err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}
	return a.completed(summary, path), nil
}

// formatFloat renders f with prec decimals, or "NaN" when undefined.
func formatFloat(f float64, prec int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// floatAttr logs undefined values as a string; JSON has no NaN.
func floatAttr(key string, f float64) slog.Attr {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return slog.String(key, formatFloat(f, -1))
	}
	return slog.Float64(key, f)
}
