package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/analysis"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/config"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/extract"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

const surveyCSV = `Age,Age Group,Frequency,Marketing Channel,Health Concern,Packaging,Price,Taste Rating,Area,Reason
25,18-25,3,Social Media,Yes,Can,10,4,Urban,Cost
40,36-45,1,TV,No,Bottle,10.01,3,Rural,Loyalty
31,26-35,2,Social Media,Yes,Bottle,25,5,Urban,Cost
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig points every directory into a temp dir and disables retries
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "input")
	cfg.Paths.ExtractDir = filepath.Join(root, "extract")
	cfg.Paths.ResultsDir = filepath.Join(root, "results")
	cfg.Paths.LogsDir = filepath.Join(root, "logs")
	cfg.Pipeline.Retries = 0
	cfg.Pipeline.RetryDelay = 0
	cfg.Pipeline.RunOnStart = false
	cfg.Server.Port = 18080
	cfg.Server.ShutdownTimeout = 5 * time.Second
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeSurvey(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.Paths.InputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.InputDir, "survey.csv"), []byte(surveyCSV), 0o644))
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return app
}

func TestNew_Wiring(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, 6, app.Manager.GetRegistry().Count())
	assert.Equal(t, config.DefaultScheduleInterval, app.Scheduler.Interval())
	assert.DirExists(t, app.Paths.ExtractDir)
	assert.DirExists(t, app.Paths.ResultsDir)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, testLogger())
	assert.Error(t, err)
}

func TestApplication_RunPipeline(t *testing.T) {
	cfg := testConfig(t)
	writeSurvey(t, cfg)
	app := newTestApp(t, cfg)

	resp, err := app.RunPipeline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)

	for _, name := range []string{
		analysis.AgeVsFrequencyFile,
		analysis.MarketingChannelsFile,
		analysis.PackagingPreferenceFile,
		analysis.TasteVsPriceFile,
		analysis.UrbanReasonsFile,
		analysis.RuralReasonsFile,
	} {
		assert.FileExists(t, filepath.Join(cfg.Paths.ResultsDir, name))
	}
	assert.FileExists(t, app.Paths.HandoffFile)

	jobs, err := app.Manager.JobStore().ListJobs(operations.JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, operations.TriggerCLI, jobs[0].Trigger)
}

func TestApplication_RunPipelineWithoutInput(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	resp, err := app.RunPipeline(context.Background())
	require.Error(t, err)
	assert.True(t, extract.IsNoInputData(err))
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
}

func TestApplication_RunStep(t *testing.T) {
	cfg := testConfig(t)
	writeSurvey(t, cfg)
	app := newTestApp(t, cfg)

	_, err := app.RunStep(context.Background(), "no_such_step")
	require.Error(t, err)
	assert.Contains(t, err.Error(), operations.StepIDExtract)

	resp, err := app.RunStep(context.Background(), operations.StepIDExtract)
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.FileExists(t, app.Paths.HandoffFile)

	resp, err = app.RunStep(context.Background(), analysis.BrandBarriersName)
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.FileExists(t, filepath.Join(cfg.Paths.ResultsDir, analysis.UrbanReasonsFile))
	assert.NoFileExists(t, filepath.Join(cfg.Paths.ResultsDir, analysis.TasteVsPriceFile))
}

func TestApplication_RouterServesAPI(t *testing.T) {
	cfg := testConfig(t)
	writeSurvey(t, cfg)
	app := newTestApp(t, cfg)

	_, err := app.RunPipeline(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	runs, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer runs.Body.Close()
	var jobs []operations.Job
	require.NoError(t, json.NewDecoder(runs.Body).Decode(&jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, operations.JobStatusCompleted, jobs[0].Status)
	assert.Len(t, jobs[0].Steps, 6)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	assert.Contains(t, string(body), "pipeline_runs_total")
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Enabled = false
	cfg.Pipeline.RunOnStart = true
	writeSurvey(t, cfg)
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, app.Start(ctx, cancel))

	require.Eventually(t, func() bool {
		jobs, err := app.Manager.JobStore().ListJobs(operations.JobFilter{Status: operations.JobStatusCompleted})
		return err == nil && len(jobs) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, app.Stop(context.Background()))
	assert.False(t, app.Scheduler.Running())

	// a second Stop is a no-op
	assert.NoError(t, app.Stop(context.Background()))
}
