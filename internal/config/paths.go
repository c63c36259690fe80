package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the pipeline paths
// This is the single source of truth for every file location the steps touch
type Paths struct {
	InputDir    string
	ExtractDir  string
	ResultsDir  string
	LogsDir     string
	HandoffFile string
}

// GetPaths derives the pipeline paths from a loaded configuration
func (c *Config) GetPaths() *Paths {
	results := c.Paths.ResultsDir
	if results == "" {
		results = c.Paths.ExtractDir
	}
	return &Paths{
		InputDir:    c.Paths.InputDir,
		ExtractDir:  c.Paths.ExtractDir,
		ResultsDir:  results,
		LogsDir:     c.Paths.LogsDir,
		HandoffFile: filepath.Join(c.Paths.ExtractDir, HandoffFileName),
	}
}

// EnsureDirectories creates the output directories if they don't exist.
// The input directory is never created: an absent input directory is
// reported by the loader as missing data.
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()
	for _, dir := range []string{p.ExtractDir, p.ResultsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}
	return nil
}

// GetResultPath returns the path for an analysis artifact
func (p *Paths) GetResultPath(filename string) string {
	return filepath.Join(p.ResultsDir, filename)
}

// LogPathResolution logs every resolved path at info level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}
	wd, _ := os.Getwd()
	logger.Info("Path resolution",
		slog.Group("paths",
			slog.String("input_dir", p.InputDir),
			slog.String("extract_dir", p.ExtractDir),
			slog.String("results_dir", p.ResultsDir),
			slog.String("logs_dir", p.LogsDir),
			slog.String("handoff_file", p.HandoffFile),
		),
		slog.String("working_dir", wd),
		slog.Bool("input_exists", FileExists(p.InputDir)),
	)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
