package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

// MarketingChannelsByAgeGroup cross-tabulates marketing channel mentions per
// age group.
func MarketingChannelsByAgeGroup(ageGroups, channels []dataset.Value) CrossTab {
	return crossTabulate(ColAgeGroup, ageGroups, channels)
}

// MarketingChannelsAnalyzer measures marketing channel reach by age group.
type MarketingChannelsAnalyzer struct {
	base
}

// NewMarketingChannelsAnalyzer creates the marketing channel analyzer
func NewMarketingChannelsAnalyzer(out *exporter.ArtifactWriter, logger *slog.Logger) *MarketingChannelsAnalyzer {
	return &MarketingChannelsAnalyzer{base: newBase(MarketingChannelsName, out, logger, ColAgeGroup, ColMarketingChannel)}
}

// Analyze writes marketing_channels_by_age_group.csv
func (a *MarketingChannelsAnalyzer) Analyze(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if res := a.precheck(ctx, ds); res != nil {
		return res, nil
	}

	groups, err := text(ds, ColAgeGroup)
	if err != nil {
		return nil, err
	}
	channels, err := text(ds, ColMarketingChannel)
	if err != nil {
		return nil, err
	}

	ct := MarketingChannelsByAgeGroup(groups, channels)
	summary := fmt.Sprintf("Marketing channel effectiveness by age group: %d age groups x %d channels",
		len(ct.Rows), len(ct.Cols))
	a.logger.InfoContext(ctx, summary,
		slog.Any("age_groups", ct.Rows),
		slog.Any("channels", ct.Cols),
		slog.Any("counts", ct.Counts))

	path, err := a.out.WriteSimpleCSV(MarketingChannelsFile, ct.Header(), ct.Records())
	if err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}
	return a.completed(summary, path), nil
}
