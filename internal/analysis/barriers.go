package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

// Area values partitioning respondents. Any other value is excluded.
const (
	AreaUrban = "Urban"
	AreaRural = "Rural"
)

// ReasonsByArea counts the reasons given for avoiding new brands, separately
// for urban and rural respondents.
func ReasonsByArea(area, reason []dataset.Value) (urban, rural CountTable) {
	var urbanReasons, ruralReasons []dataset.Value
	for i := range area {
		if !area[i].Valid {
			continue
		}
		switch area[i].S {
		case AreaUrban:
			urbanReasons = append(urbanReasons, reason[i])
		case AreaRural:
			ruralReasons = append(ruralReasons, reason[i])
		}
	}
	return countValues(ColReason, urbanReasons), countValues(ColReason, ruralReasons)
}

// BarriersAnalyzer compares brand-adoption barriers between urban and rural
// respondents.
type BarriersAnalyzer struct {
	base
}

// NewBarriersAnalyzer creates the brand barriers analyzer
func NewBarriersAnalyzer(out *exporter.ArtifactWriter, logger *slog.Logger) *BarriersAnalyzer {
	return &BarriersAnalyzer{base: newBase(BrandBarriersName, out, logger, ColArea, ColReason)}
}

// Analyze writes urban_reasons.csv and rural_reasons.csv
func (a *BarriersAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if res := a.precheck(ctx, ds); res != nil {
		return res, nil
	}

	area, err := text(ds, ColArea)
	if err != nil {
		return nil, err
	}
	reason, err := text(ds, ColReason)
	if err != nil {
		return nil, err
	}

	urban, rural := ReasonsByArea(area, reason)
	summary := fmt.Sprintf("Reasons for not trying new brands. Urban: %s. Rural: %s", urban, rural)
	a.logger.InfoContext(ctx, summary,
		slog.Int("urban_respondents", urban.Total()),
		slog.Int("rural_respondents", rural.Total()))

	paths, err := a.out.WriteCSVs(
		exporter.CSVTable{Name: UrbanReasonsFile, Headers: urban.Header(), Records: urban.Records()},
		exporter.CSVTable{Name: RuralReasonsFile, Headers: rural.Header(), Records: rural.Records()},
	)
	if err != nil {
		return nil, fmt.Errorf("write reason tables: %w", err)
	}
	return a.completed(summary, paths...), nil
}
