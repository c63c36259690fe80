package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colddrinks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the layering of defaults, file and environment
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 1, cfg.Pipeline.Retries)
				assert.Equal(t, 5*time.Minute, cfg.Pipeline.RetryDelay)
				assert.Equal(t, 24*time.Hour, cfg.Pipeline.ScheduleInterval)
				assert.Equal(t, ExecutionModeSequential, cfg.Pipeline.ExecutionMode)
				assert.Equal(t, HandoffFile, cfg.Pipeline.Handoff)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.True(t, filepath.IsAbs(cfg.Paths.InputDir))
				assert.Equal(t, filepath.Join("airflow", "input_data"), lastTwo(cfg.Paths.InputDir))
				assert.Equal(t, cfg.Paths.ExtractDir, cfg.Paths.ResultsDir)
			},
		},
		{
			name: "file overrides defaults",
			file: `
pipeline:
  retries: 3
  retry_delay: 30s
  execution_mode: parallel
paths:
  input_dir: /srv/survey/in
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Pipeline.Retries)
				assert.Equal(t, 30*time.Second, cfg.Pipeline.RetryDelay)
				assert.Equal(t, ExecutionModeParallel, cfg.Pipeline.ExecutionMode)
				assert.Equal(t, "/srv/survey/in", cfg.Paths.InputDir)
				// untouched sections keep their defaults
				assert.Equal(t, 5, cfg.Pipeline.MaxConcurrency)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "env takes precedence over file",
			file: "pipeline:\n  retries: 3\n",
			env: map[string]string{
				"COLDDRINKS_PIPELINE_RETRIES":  "0",
				"COLDDRINKS_SERVER_PORT":       "9090",
				"COLDDRINKS_PATHS_RESULTS_DIR": "/srv/results",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0, cfg.Pipeline.Retries)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/srv/results", cfg.Paths.ResultsDir)
			},
		},
		{
			name:    "invalid execution mode",
			env:     map[string]string{"COLDDRINKS_PIPELINE_EXECUTION_MODE": "random"},
			wantErr: true,
		},
		{
			name:    "invalid handoff",
			file:    "pipeline:\n  handoff: queue\n",
			wantErr: true,
		},
		{
			name:    "zero schedule interval",
			env:     map[string]string{"COLDDRINKS_PIPELINE_SCHEDULE_INTERVAL": "0s"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "pipeline: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigFileEnv, "")
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeConfigFile(t, tt.file))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_ExplicitMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_LogFileUnderLogsDir(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	logs := t.TempDir()
	t.Setenv("COLDDRINKS_PATHS_LOGS_DIR", logs)
	t.Setenv("COLDDRINKS_LOGGING_OUTPUT", "file")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(logs, "colddrinks.log"), cfg.Logging.FilePath)
}

func TestGetPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.InputDir = "/in"
	cfg.Paths.ExtractDir = "/extract"

	paths := cfg.GetPaths()
	assert.Equal(t, "/in", paths.InputDir)
	assert.Equal(t, "/extract", paths.ResultsDir)
	assert.Equal(t, filepath.Join("/extract", "extracted_data.csv"), paths.HandoffFile)
	assert.Equal(t, filepath.Join("/extract", "taste.csv"), paths.GetResultPath("taste.csv"))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	paths := &Paths{
		InputDir:   filepath.Join(root, "input"),
		ExtractDir: filepath.Join(root, "extract"),
		ResultsDir: filepath.Join(root, "results"),
		LogsDir:    filepath.Join(root, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.ExtractDir)
	assert.DirExists(t, paths.ResultsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.NoDirExists(t, paths.InputDir, "input dir must never be created")
}

func lastTwo(p string) string {
	return filepath.Join(filepath.Base(filepath.Dir(p)), filepath.Base(p))
}
