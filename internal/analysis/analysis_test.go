package analysis_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/analysis"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

const surveyCSV = `Age,Age Group,Frequency,Marketing Channel,Health Concern,Packaging,Price,Taste Rating,Area,Reason
25,18-25,3,Social Media,Yes,Can,10,4,Urban,Cost
40,36-45,1,TV,No,Bottle,10.01,3,Rural,Loyalty
31,26-35,2,Social Media,Yes,Bottle,25,5,Urban,Cost
22,18-25,4,TV,yes,Can,50.01,2,Suburban,Taste
55,46-60,1,Billboard,Yes,Can,-1,1,Rural,Availability
19,18-25,5,Social Media,Yes,Glass,45,4,Urban,Loyalty
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// loadCSV builds a unified dataset the way the loader does.
func loadCSV(t *testing.T, files ...string) *dataset.Dataset {
	t.Helper()
	tables := make([]*dataset.Table, len(files))
	for i, f := range files {
		tbl, err := dataset.ReadTable(strings.NewReader(f), "test.csv")
		require.NoError(t, err)
		tables[i] = tbl
	}
	ds, err := dataset.Concat(tables...)
	require.NoError(t, err)
	ds, err = ds.DeriveNumeric("Age", "Price", "Frequency")
	require.NoError(t, err)
	return ds
}

func newSuite(t *testing.T) (*analysis.Suite, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "results")
	return analysis.NewSuite(exporter.NewArtifactWriter(dir, discardLogger()), discardLogger()), dir
}

func run(t *testing.T, suite *analysis.Suite, name string, ds *dataset.Dataset) *analysis.Result {
	t.Helper()
	a, err := suite.Get(name)
	require.NoError(t, err)
	res, err := a.Analyze(context.Background(), ds)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, name, res.Name)
	return res
}

func readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(content)
}

func TestAgeFrequencyCorrelation(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{name: "perfect negative", x: []float64{25, 40}, y: []float64{3, 1}, want: -1},
		{name: "perfect positive", x: []float64{1, 2, 3}, y: []float64{2, 4, 6}, want: 1},
		{name: "missing pairs excluded", x: []float64{25, 40, nan, 30}, y: []float64{3, 1, 5, nan}, want: -1},
		{name: "single pair", x: []float64{25}, y: []float64{3}, want: nan},
		{name: "empty", want: nan},
		{name: "all missing", x: []float64{nan, nan}, y: []float64{1, 2}, want: nan},
		{name: "zero variance", x: []float64{30, 30, 30}, y: []float64{1, 2, 3}, want: nan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.AgeFrequencyCorrelation(tt.x, tt.y)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "got %v", got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAgeFrequencyAnalyzer_Scenario(t *testing.T) {
	suite, dir := newSuite(t)
	ds := loadCSV(t, "Age,Frequency\n25,3\n40,1\n")

	res := run(t, suite, analysis.AgeVsFrequencyName, ds)

	assert.Equal(t, analysis.StatusCompleted, res.Status)
	require.NotNil(t, res.Correlation)
	assert.InDelta(t, -1.0, *res.Correlation, 1e-12)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, filepath.Join(dir, analysis.AgeVsFrequencyFile), res.Artifacts[0])
	assert.FileExists(t, res.Artifacts[0])
	assert.Contains(t, res.Summary, "-1.00")
}

func TestAgeFrequencyAnalyzer_UndefinedCorrelationStillCharts(t *testing.T) {
	suite, dir := newSuite(t)
	ds := loadCSV(t, "Age,Frequency\n25,3\nabc,NA\n")

	res := run(t, suite, analysis.AgeVsFrequencyName, ds)

	assert.Equal(t, analysis.StatusCompleted, res.Status)
	require.NotNil(t, res.Correlation)
	assert.True(t, math.IsNaN(*res.Correlation))
	assert.FileExists(t, filepath.Join(dir, analysis.AgeVsFrequencyFile))
}

func TestAnalyzers_SkipWhenColumnsMissing(t *testing.T) {
	tests := []struct {
		name     string
		analyzer string
		csv      string
		missing  []string
		file     string
	}{
		{
			name:     "age vs frequency without Frequency",
			analyzer: analysis.AgeVsFrequencyName,
			csv:      "Age,Area\n25,Urban\n",
			missing:  []string{"Frequency_Numeric"},
			file:     analysis.AgeVsFrequencyFile,
		},
		{
			name:     "marketing without either column",
			analyzer: analysis.MarketingChannelsName,
			csv:      "Age\n25\n",
			missing:  []string{"Age Group", "Marketing Channel"},
			file:     analysis.MarketingChannelsFile,
		},
		{
			name:     "packaging without Packaging",
			analyzer: analysis.PackagingPreferenceName,
			csv:      "Health Concern\nYes\n",
			missing:  []string{"Packaging"},
			file:     analysis.PackagingPreferenceFile,
		},
		{
			name:     "taste without Price",
			analyzer: analysis.TasteVsPriceName,
			csv:      "Taste Rating\n4\n",
			missing:  []string{"Price_Numeric"},
			file:     analysis.TasteVsPriceFile,
		},
		{
			name:     "barriers without Reason",
			analyzer: analysis.BrandBarriersName,
			csv:      "Area\nUrban\n",
			missing:  []string{"Reason"},
			file:     analysis.UrbanReasonsFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite, dir := newSuite(t)
			res := run(t, suite, tt.analyzer, loadCSV(t, tt.csv))

			assert.True(t, res.Skipped())
			assert.Equal(t, tt.missing, res.Missing)
			assert.Contains(t, res.Reason, "columns missing")
			assert.Empty(t, res.Artifacts)
			assert.NoFileExists(t, filepath.Join(dir, tt.file))
		})
	}
}

func TestMarketingChannelsByAgeGroup(t *testing.T) {
	suite, dir := newSuite(t)
	ds := loadCSV(t, surveyCSV, "Age Group,Marketing Channel\n18-25,\n,TV\n")

	res := run(t, suite, analysis.MarketingChannelsName, ds)
	assert.Equal(t, analysis.StatusCompleted, res.Status)

	want := "Age Group,Billboard,Social Media,TV\n" +
		"18-25,0,2,1\n" +
		"26-35,0,1,0\n" +
		"36-45,0,0,1\n" +
		"46-60,1,0,0\n"
	assert.Equal(t, want, readArtifact(t, dir, analysis.MarketingChannelsFile))
}

func TestMarketingChannelsCrossTab(t *testing.T) {
	groups := []dataset.Value{dataset.Text("B"), dataset.Text("A"), dataset.Text("B"), dataset.Missing()}
	channels := []dataset.Value{dataset.Text("TV"), dataset.Text("TV"), dataset.Text("Radio"), dataset.Text("TV")}

	ct := analysis.MarketingChannelsByAgeGroup(groups, channels)

	assert.Equal(t, []string{"A", "B"}, ct.Rows)
	assert.Equal(t, []string{"Radio", "TV"}, ct.Cols)
	assert.Equal(t, 1, ct.Count("B", "Radio"))
	assert.Equal(t, 0, ct.Count("A", "Radio"))
	assert.Equal(t, 0, ct.Count("C", "TV"))
}

func TestPackagingPreferences(t *testing.T) {
	suite, dir := newSuite(t)
	res := run(t, suite, analysis.PackagingPreferenceName, loadCSV(t, surveyCSV))
	assert.Equal(t, analysis.StatusCompleted, res.Status)

	// Row 4 says "yes" in lowercase and must not count.
	want := "Packaging,count\nCan,2\nBottle,1\nGlass,1\n"
	assert.Equal(t, want, readArtifact(t, dir, analysis.PackagingPreferenceFile))
}

func TestPackagingPreferences_CaseSensitive(t *testing.T) {
	health := []dataset.Value{dataset.Text("yes"), dataset.Text("YES"), dataset.Text("Yes "), dataset.Missing()}
	packaging := []dataset.Value{dataset.Text("Can"), dataset.Text("Can"), dataset.Text("Can"), dataset.Text("Can")}

	table := analysis.PackagingPreferences(health, packaging)
	assert.Empty(t, table.Entries)
}

func TestPackagingPreferences_NoHealthConcernedRows(t *testing.T) {
	suite, dir := newSuite(t)
	res := run(t, suite, analysis.PackagingPreferenceName,
		loadCSV(t, "Health Concern,Packaging\nNo,Can\nyes,Bottle\n"))

	assert.Equal(t, analysis.StatusCompleted, res.Status)
	assert.Equal(t, "Packaging,count\n", readArtifact(t, dir, analysis.PackagingPreferenceFile))
}

func TestPriceRange_Boundaries(t *testing.T) {
	tests := []struct {
		price float64
		label string
		ok    bool
	}{
		{0, "", false},
		{0.01, "Low", true},
		{10, "Low", true},
		{10.01, "Medium", true},
		{20, "Medium", true},
		{20.5, "High", true},
		{30, "High", true},
		{30.01, "Premium", true},
		{50, "Premium", true},
		{50.01, "", false},
		{-1, "", false},
		{math.NaN(), "", false},
	}
	for _, tt := range tests {
		label, ok := analysis.PriceRange(tt.price)
		assert.Equal(t, tt.ok, ok, "price %v", tt.price)
		assert.Equal(t, tt.label, label, "price %v", tt.price)
	}
}

func TestTasteByPriceRange(t *testing.T) {
	nan := math.NaN()
	prices := []float64{10, 10.01, 25, 50.01, -1, 45, 5, nan}
	ratings := []float64{4, 3, 5, 2, 1, 4, nan, 5}

	got := analysis.TasteByPriceRange(prices, ratings)
	want := []analysis.BinMean{
		{Label: "Low", Mean: 4, N: 1},
		{Label: "Medium", Mean: 3, N: 1},
		{Label: "High", Mean: 5, N: 1},
		{Label: "Premium", Mean: 4, N: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("bin means mismatch (-want +got):\n%s", diff)
	}
}

func TestTasteAnalyzer(t *testing.T) {
	suite, dir := newSuite(t)
	ds := loadCSV(t, "Price,Taste Rating\n10,4\n8,5\n10.01,3\n50.01,1\n-1,2\n12,great\n")

	res := run(t, suite, analysis.TasteVsPriceName, ds)
	assert.Equal(t, analysis.StatusCompleted, res.Status)

	// Empty bins report an undefined mean as an empty cell.
	want := "Price Range,Taste Rating\nLow,4.5\nMedium,3\nHigh,\nPremium,\n"
	assert.Equal(t, want, readArtifact(t, dir, analysis.TasteVsPriceFile))

	assert.False(t, ds.Has("Price Range"), "derived column must not leak into the shared dataset")
}

func TestReasonsByArea(t *testing.T) {
	suite, dir := newSuite(t)
	res := run(t, suite, analysis.BrandBarriersName, loadCSV(t, surveyCSV))

	assert.Equal(t, analysis.StatusCompleted, res.Status)
	assert.Equal(t, []string{
		filepath.Join(dir, analysis.UrbanReasonsFile),
		filepath.Join(dir, analysis.RuralReasonsFile),
	}, res.Artifacts)

	assert.Equal(t, "Reason,count\nCost,2\nLoyalty,1\n", readArtifact(t, dir, analysis.UrbanReasonsFile))
	assert.Equal(t, "Reason,count\nLoyalty,1\nAvailability,1\n", readArtifact(t, dir, analysis.RuralReasonsFile))
}

func TestReasonsByArea_FailedWriteLeavesNoArtifacts(t *testing.T) {
	suite, dir := newSuite(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, analysis.RuralReasonsFile, "keep"), 0o755))

	a, err := suite.Get(analysis.BrandBarriersName)
	require.NoError(t, err)
	res, err := a.Analyze(context.Background(), loadCSV(t, surveyCSV))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.NoFileExists(t, filepath.Join(dir, analysis.UrbanReasonsFile))
}

func TestReasonsByArea_SuburbanExcluded(t *testing.T) {
	area := []dataset.Value{dataset.Text("Urban"), dataset.Text("Rural"), dataset.Text("Suburban"), dataset.Text("urban")}
	reason := []dataset.Value{dataset.Text("Cost"), dataset.Text("Taste"), dataset.Text("Habit"), dataset.Text("Habit")}

	urban, rural := analysis.ReasonsByArea(area, reason)

	assert.Equal(t, []analysis.Count{{Value: "Cost", Count: 1}}, urban.Entries)
	assert.Equal(t, []analysis.Count{{Value: "Taste", Count: 1}}, rural.Entries)
}

func TestAnalyzers_Idempotent(t *testing.T) {
	suite, dir := newSuite(t)
	ds := loadCSV(t, surveyCSV)

	snapshot := func() map[string][]byte {
		out := make(map[string][]byte)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			content, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			out[e.Name()] = content
		}
		return out
	}

	for _, a := range suite.Analyzers() {
		_, err := a.Analyze(context.Background(), ds)
		require.NoError(t, err)
	}
	first := snapshot()
	assert.Len(t, first, 6)

	for _, a := range suite.Analyzers() {
		_, err := a.Analyze(context.Background(), ds)
		require.NoError(t, err)
	}
	second := snapshot()

	require.Equal(t, len(first), len(second))
	for name, content := range first {
		assert.True(t, bytes.Equal(content, second[name]), "%s changed between runs", name)
	}
}

func TestAnalyzers_DeserializedDatasetMatchesInMemory(t *testing.T) {
	ds := loadCSV(t, surveyCSV)

	var buf bytes.Buffer
	require.NoError(t, ds.Encode(&buf))
	decoded, err := dataset.Decode(&buf)
	require.NoError(t, err)

	memSuite, memDir := newSuite(t)
	fileSuite, fileDir := newSuite(t)
	for _, name := range memSuite.Names() {
		run(t, memSuite, name, ds)
		run(t, fileSuite, name, decoded)
	}

	for _, file := range []string{
		analysis.AgeVsFrequencyFile,
		analysis.MarketingChannelsFile,
		analysis.PackagingPreferenceFile,
		analysis.TasteVsPriceFile,
		analysis.UrbanReasonsFile,
		analysis.RuralReasonsFile,
	} {
		assert.Equal(t, readArtifact(t, memDir, file), readArtifact(t, fileDir, file), file)
	}
}

func TestSuite(t *testing.T) {
	suite, _ := newSuite(t)

	assert.Len(t, suite.Analyzers(), 5)
	assert.Equal(t, []string{
		analysis.AgeVsFrequencyName,
		analysis.MarketingChannelsName,
		analysis.PackagingPreferenceName,
		analysis.BrandBarriersName,
		analysis.TasteVsPriceName,
	}, suite.Names())

	_, err := suite.Get("does_not_exist")
	assert.Error(t, err)
}
