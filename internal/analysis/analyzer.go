package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

// Analyzer names. Each doubles as the pipeline step ID of the analyzer.
const (
	AgeVsFrequencyName      = "analyze_age_vs_frequency"
	MarketingChannelsName   = "marketing_channels_by_age_group"
	PackagingPreferenceName = "packaging_preferences_health_concerns"
	TasteVsPriceName        = "taste_ratings_vs_price_range"
	BrandBarriersName       = "reasons_new_brands_urban_rural"
)

// Artifact file names, relative to the results directory.
const (
	AgeVsFrequencyFile      = "age_vs_frequency.png"
	MarketingChannelsFile   = "marketing_channels_by_age_group.csv"
	PackagingPreferenceFile = "packaging_preferences_health_concerns.csv"
	TasteVsPriceFile        = "taste_ratings_vs_price_range.csv"
	UrbanReasonsFile        = "urban_reasons.csv"
	RuralReasonsFile        = "rural_reasons.csv"
)

// Survey column names read by the analyzers.
const (
	ColAgeGroup         = "Age Group"
	ColMarketingChannel = "Marketing Channel"
	ColHealthConcern    = "Health Concern"
	ColPackaging        = "Packaging"
	ColTasteRating      = "Taste Rating"
	ColArea             = "Area"
	ColReason           = "Reason"
	ColPriceRange       = "Price Range"
)

// Status is the outcome of one analyzer run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Result reports what an analyzer did. A skipped result carries the missing
// columns and never any artifact.
type Result struct {
	Name      string
	Status    Status
	Reason    string
	Missing   []string
	Artifacts []string
	// Correlation is set by the age-vs-frequency analyzer only. NaN means
	// the coefficient is undefined.
	Correlation *float64
	Summary     string
}

// Skipped reports whether the analyzer skipped its computation.
func (r *Result) Skipped() bool {
	return r.Status == StatusSkipped
}

// Analyzer is one independent analysis over the unified dataset. Analyze
// never mutates ds. The returned error is reserved for artifact I/O; a
// missing column set is reported as a skipped Result.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error)
}

// base holds what every analyzer shares: its name, required columns, the
// artifact writer and a scoped logger.
type base struct {
	name     string
	required []string
	out      *exporter.ArtifactWriter
	logger   *slog.Logger
}

func newBase(name string, out *exporter.ArtifactWriter, logger *slog.Logger, required ...string) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		name:     name,
		required: required,
		out:      out,
		logger:   logger.With(slog.String("component", "analysis"), slog.String("analyzer", name)),
	}
}

// Name returns the analyzer name
func (b *base) Name() string {
	return b.name
}

// precheck returns a skipped result when ds lacks a required column.
func (b *base) precheck(ctx context.Context, ds *dataset.Dataset) *Result {
	missing := ds.Missing(b.required...)
	if len(missing) == 0 {
		return nil
	}
	reason := fmt.Sprintf("columns missing: %s", strings.Join(missing, ", "))
	b.logger.WarnContext(ctx, "Analysis skipped",
		slog.Any("missing_columns", missing))
	return &Result{
		Name:    b.name,
		Status:  StatusSkipped,
		Reason:  reason,
		Missing: missing,
	}
}

func (b *base) completed(summary string, artifacts ...string) *Result {
	return &Result{
		Name:      b.name,
		Status:    StatusCompleted,
		Artifacts: artifacts,
		Summary:   summary,
	}
}

// text fetches a text column the precheck already guaranteed.
func text(ds *dataset.Dataset, name string) ([]dataset.Value, error) {
	values, err := ds.Text(name)
	if err != nil {
		return nil, fmt.Errorf("read column: %w", err)
	}
	return values, nil
}

// numeric fetches a column as numbers, coercing text columns cell by cell.
func numeric(ds *dataset.Dataset, name string) ([]float64, error) {
	if kind, _ := ds.KindOf(name); kind == dataset.KindNumeric {
		return ds.Numeric(name)
	}
	values, err := text(ds, name)
	if err != nil {
		return nil, err
	}
	return dataset.CoerceNumeric(values), nil
}
