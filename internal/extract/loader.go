package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
)

// Loader discovers and merges the survey CSV files of one input directory.
type Loader struct {
	inputDir string
	logger   *slog.Logger
}

// NewLoader creates a loader over inputDir
func NewLoader(inputDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		inputDir: inputDir,
		logger:   logger.With(slog.String("component", "loader")),
	}
}

// InputDir returns the directory the loader reads
func (l *Loader) InputDir() string {
	return l.inputDir
}

// Load reads every CSV file of the input directory, concatenates them
// row-wise over the union of their columns and derives the numeric
// companions of dataset.NumericSources. It fails with *NoInputDataError when the
// directory holds no CSV file. Malformed content never fails the load.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	files, err := FindCSVFiles(l.inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoInputDataError{Dir: l.inputDir, Pattern: "*" + CSVExtension}
	}

	tables := make([]*dataset.Table, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tbl, err := readFile(f.Path)
		if err != nil {
			return nil, err
		}
		attrs := []any{
			slog.String("file", f.Name),
			slog.Int("rows", len(tbl.Rows)),
			slog.Int("columns", len(tbl.Header)),
		}
		if tbl.Malformed > 0 {
			l.logger.WarnContext(ctx, "Malformed records degraded to missing values",
				append(attrs, slog.Int("malformed", tbl.Malformed))...)
		} else {
			l.logger.DebugContext(ctx, "Read input file", attrs...)
		}
		tables = append(tables, tbl)
	}

	merged, err := dataset.Concat(tables...)
	if err != nil {
		return nil, fmt.Errorf("concatenate input files: %w", err)
	}
	ds, err := merged.DeriveNumeric(dataset.NumericSources...)
	if err != nil {
		return nil, fmt.Errorf("derive numeric columns: %w", err)
	}

	l.logger.InfoContext(ctx, "Data extracted",
		slog.String("input_dir", l.inputDir),
		slog.Int("files", len(files)),
		slog.Int("rows", ds.Len()),
		slog.Any("columns", ds.Columns()))

	return ds, nil
}

func readFile(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return dataset.ReadTable(f, path)
}
