package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// Encode writes d as CSV with a header row. Missing cells are empty and
// numeric cells use FormatNumber.
func (d *Dataset) Encode(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(d.cols))
	for i := 0; i < d.rows; i++ {
		for j, c := range d.cols {
			record[j] = c.cell(i)
		}
		// A lone empty field would be written as a blank line, which readers skip.
		if len(record) == 1 && record[0] == "" {
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
			continue
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a dataset written by Encode. The companions of NumericSources
// come back as numeric columns when their source column is present, which is
// exactly when DeriveNumeric creates them. Every other column stays text, so a
// decoded dataset has the same column semantics as the one that was encoded.
func Decode(r io.Reader) (*Dataset, error) {
	t, err := ReadTable(r, "handoff")
	if err != nil {
		return nil, err
	}
	d, err := Concat(t)
	if err != nil {
		return nil, err
	}
	numeric := make(map[string]bool, len(NumericSources))
	for _, src := range NumericSources {
		if d.Has(src) {
			numeric[NumericName(src)] = true
		}
	}
	cols := make([]*Column, len(d.cols))
	for i, c := range d.cols {
		if numeric[c.name] && c.kind == KindText {
			cols[i] = &Column{name: c.name, kind: KindNumeric, num: CoerceNumeric(c.text)}
			continue
		}
		cols[i] = c
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = d.rows
	return out, nil
}

// SaveFile persists d to path under an exclusive file lock, creating the
// parent directory. Concurrent LoadFile calls never observe a partial file.
func SaveFile(path string, d *Dataset) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create handoff directory: %w", err)
	}
	if err := lockedfile.Write(path, &buf, 0644); err != nil {
		return fmt.Errorf("write handoff file %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a dataset persisted by SaveFile.
func LoadFile(path string) (*Dataset, error) {
	data, err := lockedfile.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read handoff file %s: %w", path, err)
	}
	d, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode handoff file %s: %w", path, err)
	}
	return d, nil
}
