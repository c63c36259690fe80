package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ArtifactWriter writes analysis artifacts into one results directory.
// Every write replaces the target file atomically, so a reader sees either
// the previous artifact or the new one, never a partial file.
type ArtifactWriter struct {
	dir    string
	logger *slog.Logger
}

// NewArtifactWriter creates a writer rooted at dir. The directory is created
// on the first write.
func NewArtifactWriter(dir string, logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// Dir returns the results directory
func (w *ArtifactWriter) Dir() string {
	return w.dir
}

// Path resolves an artifact name against the results directory
func (w *ArtifactWriter) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes a table artifact and returns its full path
func (w *ArtifactWriter) WriteCSV(name string, options WriteOptions) (string, error) {
	fullPath := w.Path(name)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	err := writeAtomic(fullPath, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}
		return writeRecords(out, options.Headers, options.Records)
	})
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

// WriteSimpleCSV writes headers and records without a BOM
func (w *ArtifactWriter) WriteSimpleCSV(name string, headers []string, records [][]string) (string, error) {
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records})
}

// CSVTable is one table of a batch write
type CSVTable struct {
	Name    string
	Headers []string
	Records [][]string
}

// WriteCSVs writes several tables as one unit and returns their full paths.
// All tables are staged first and none is published unless every one was
// written; a failure leaves the results directory as it was.
func (w *ArtifactWriter) WriteCSVs(tables ...CSVTable) ([]string, error) {
	staged := make([]stagedFile, 0, len(tables))
	discard := func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}

	for _, table := range tables {
		fullPath := w.Path(table.Name)
		w.logger.Debug("Staging CSV file",
			slog.String("full_path", fullPath),
			slog.Int("record_count", len(table.Records)))

		headers, records := table.Headers, table.Records
		tmp, err := stage(fullPath, func(out io.Writer) error {
			return writeRecords(out, headers, records)
		})
		if err != nil {
			discard()
			return nil, err
		}
		staged = append(staged, stagedFile{tmp: tmp, path: fullPath})
	}

	for _, f := range staged {
		if err := checkReplaceable(f.path); err != nil {
			discard()
			return nil, err
		}
	}

	paths := make([]string, 0, len(staged))
	for i, f := range staged {
		if err := os.Rename(f.tmp, f.path); err != nil {
			for _, rest := range staged[i:] {
				os.Remove(rest.tmp)
			}
			for _, published := range paths {
				os.Remove(published)
			}
			return nil, fmt.Errorf("failed to replace %s: %w", f.path, err)
		}
		paths = append(paths, f.path)
	}
	return paths, nil
}

type stagedFile struct {
	tmp  string
	path string
}

// checkReplaceable fails when path exists and is not a regular file, which
// rename cannot replace.
func checkReplaceable(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("failed to replace %s: not a regular file", path)
	}
	return nil
}

func writeRecords(out io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeAtomic writes to a temporary file next to path and renames it into place.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := stage(path, write)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// stage writes a complete temporary file next to path and returns its name.
// The temporary file is removed on failure.
func stage(path string, write func(io.Writer) error) (name string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	return tmp.Name(), nil
}
