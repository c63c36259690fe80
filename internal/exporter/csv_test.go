package exporter

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWriter(t *testing.T) (*ArtifactWriter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "results")
	return NewArtifactWriter(dir, slog.New(slog.NewJSONHandler(io.Discard, nil))), dir
}

func TestArtifactWriter_WriteCSV(t *testing.T) {
	writer, dir := setupWriter(t)

	tests := []struct {
		name     string
		file     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			file: "basic.csv",
			options: WriteOptions{
				Headers: []string{"Reason", "count"},
				Records: [][]string{
					{"Cost", "3"},
					{"Taste", "1"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Reason,count\nCost,3\nTaste,1\n", string(content))
			},
		},
		{
			name: "write with BOM prefix",
			file: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"Packaging", "count"},
				Records:   [][]string{{"Can", "2"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "Packaging,count\nCan,2\n", string(content[3:]))
			},
		},
		{
			name: "header only table",
			file: "empty.csv",
			options: WriteOptions{
				Headers: []string{"Packaging", "count"},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Packaging,count\n", string(content))
			},
		},
		{
			name: "fields needing quotes",
			file: "quoted.csv",
			options: WriteOptions{
				Headers: []string{"Reason", "count"},
				Records: [][]string{{"Too sweet, too fizzy", "1"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Reason,count\n\"Too sweet, too fizzy\",1\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteCSV(tt.file, tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.file), path)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestArtifactWriter_OverwritesWithoutLeftovers(t *testing.T) {
	writer, dir := setupWriter(t)

	_, err := writer.WriteSimpleCSV("urban_reasons.csv", []string{"Reason", "count"},
		[][]string{{"Cost", "3"}, {"Taste", "2"}, {"Habit", "1"}})
	require.NoError(t, err)
	_, err = writer.WriteSimpleCSV("urban_reasons.csv", []string{"Reason", "count"},
		[][]string{{"Cost", "1"}})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "urban_reasons.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Reason,count\nCost,1\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.False(t, strings.HasPrefix(entries[0].Name(), "."))
}

func TestArtifactWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupWriter(t)
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")
	assert.Equal(t, abs, writer.Path(abs))
}

func TestArtifactWriter_WriteCSVs(t *testing.T) {
	writer, dir := setupWriter(t)

	paths, err := writer.WriteCSVs(
		CSVTable{Name: "urban_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Cost", "2"}}},
		CSVTable{Name: "rural_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Loyalty", "1"}}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "urban_reasons.csv"),
		filepath.Join(dir, "rural_reasons.csv"),
	}, paths)

	content, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "Reason,count\nLoyalty,1\n", string(content))
}

func TestArtifactWriter_WriteCSVsPublishesNothingOnFailure(t *testing.T) {
	writer, dir := setupWriter(t)

	// a non-empty directory cannot be replaced by rename
	blocked := filepath.Join(dir, "rural_reasons.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "keep"), 0o755))

	_, err := writer.WriteCSVs(
		CSVTable{Name: "urban_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Cost", "2"}}},
		CSVTable{Name: "rural_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Loyalty", "1"}}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rural_reasons.csv")

	assert.NoFileExists(t, filepath.Join(dir, "urban_reasons.csv"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "rural_reasons.csv", entries[0].Name())
}

func TestArtifactWriter_WriteCSVsKeepsPreviousOnFailure(t *testing.T) {
	writer, dir := setupWriter(t)

	_, err := writer.WriteSimpleCSV("urban_reasons.csv", []string{"Reason", "count"}, [][]string{{"Habit", "5"}})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rural_reasons.csv", "keep"), 0o755))

	_, err = writer.WriteCSVs(
		CSVTable{Name: "urban_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Cost", "2"}}},
		CSVTable{Name: "rural_reasons.csv", Headers: []string{"Reason", "count"}, Records: [][]string{{"Loyalty", "1"}}},
	)
	require.Error(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "urban_reasons.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Reason,count\nHabit,5\n", string(content))
}
