package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// Table is one parsed CSV file before concatenation.
type Table struct {
	Source string
	Header []string
	Rows   [][]Value
	// Malformed counts records that could not be parsed and were kept as
	// all-missing rows, plus records whose field count did not match the header.
	Malformed int
}

// ReadTable parses CSV text with the first record as header. Malformed
// records degrade to missing cells: short rows are padded, long rows are
// truncated and unparseable records become all-missing rows. Only I/O
// failures are returned as errors.
func ReadTable(r io.Reader, source string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{Source: source}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return nil, fmt.Errorf("read header of %s: %w", source, err)
		}
		t.Malformed++
	}
	t.Header = normalizeHeader(header)
	width := len(t.Header)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read %s: %w", source, err)
			}
			t.Malformed++
			record = nil
		} else if len(record) != width {
			t.Malformed++
		}

		row := make([]Value, width)
		for i := 0; i < width && i < len(record); i++ {
			row[i] = ParseCell(record[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// normalizeHeader strips a UTF-8 BOM, names blank headers "Unnamed: <i>" and
// disambiguates repeated names as "<name>.<n>".
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		if seen[base] > 0 {
			for n := seen[base]; ; n++ {
				candidate := fmt.Sprintf("%s.%d", base, n)
				if seen[candidate] == 0 {
					name = candidate
					break
				}
			}
		}
		seen[base]++
		if name != base {
			seen[name]++
		}
		header[i] = name
	}
	return header
}

// Concat stacks tables row-wise. Columns keep the order of first appearance
// across tables, so the first table's order leads; cells of columns a table
// lacks are missing. Row order follows table order.
func Concat(tables ...*Table) (*Dataset, error) {
	var order []string
	pos := make(map[string]int)
	total := 0
	for _, t := range tables {
		for _, name := range t.Header {
			if _, ok := pos[name]; !ok {
				pos[name] = len(order)
				order = append(order, name)
			}
		}
		total += len(t.Rows)
	}

	columns := make([][]Value, len(order))
	for i := range columns {
		columns[i] = make([]Value, total)
	}

	offset := 0
	for _, t := range tables {
		for j, name := range t.Header {
			col := columns[pos[name]]
			for r, row := range t.Rows {
				col[offset+r] = row[j]
			}
		}
		offset += len(t.Rows)
	}

	cols := make([]*Column, len(order))
	for i, name := range order {
		cols[i] = &Column{name: name, kind: KindText, text: columns[i]}
	}
	d, err := New(cols...)
	if err != nil {
		return nil, err
	}
	d.rows = total
	return d, nil
}
