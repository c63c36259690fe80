package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

// HealthConcernYes is the exact, case-sensitive answer selecting
// health-concerned respondents.
const HealthConcernYes = "Yes"

// PackagingPreferences counts packaging choices among rows whose health
// concern is exactly "Yes".
func PackagingPreferences(healthConcern, packaging []dataset.Value) CountTable {
	selected := make([]dataset.Value, 0, len(packaging))
	for i := range healthConcern {
		if healthConcern[i].Valid && healthConcern[i].S == HealthConcernYes {
			selected = append(selected, packaging[i])
		}
	}
	return countValues(ColPackaging, selected)
}

// PackagingAnalyzer finds packaging preferences of health-concerned respondents.
type PackagingAnalyzer struct {
	base
}

// NewPackagingAnalyzer creates the packaging preference analyzer
func NewPackagingAnalyzer(out *exporter.ArtifactWriter, logger *slog.Logger) *PackagingAnalyzer {
	return &PackagingAnalyzer{base: newBase(PackagingPreferenceName, out, logger, ColHealthConcern, ColPackaging)}
}

// Analyze writes packaging_preferences_health_concerns.csv. No matching
// respondent yields a header-only table.
func (a *PackagingAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if res := a.precheck(ctx, ds); res != nil {
		return res, nil
	}

	health, err := text(ds, ColHealthConcern)
	if err != nil {
		return nil, err
	}
	packaging, err := text(ds, ColPackaging)
	if err != nil {
		return nil, err
	}

	table := PackagingPreferences(health, packaging)
	summary := fmt.Sprintf("Packaging preferences among health-concerned respondents: %s", table)
	a.logger.InfoContext(ctx, summary,
		slog.Int("respondents", table.Total()),
		slog.Int("categories", len(table.Entries)))

	path, err := a.out.WriteSimpleCSV(PackagingPreferenceFile, table.Header(), table.Records())
	if err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}
	return a.completed(summary, path), nil
}
