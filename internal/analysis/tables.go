package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
)

// Count is one row of a category count table
type Count struct {
	Value string
	Count int
}

// CountTable maps the distinct values of one column to their frequency,
// ordered by count descending and then by first appearance.
type CountTable struct {
	Column  string
	Entries []Count
}

// countValues tallies present values; missing cells are ignored.
func countValues(column string, values []dataset.Value) CountTable {
	index := make(map[string]int)
	var entries []Count
	for _, v := range values {
		if !v.Valid {
			continue
		}
		i, ok := index[v.S]
		if !ok {
			i = len(entries)
			index[v.S] = i
			entries = append(entries, Count{Value: v.S})
		}
		entries[i].Count++
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return CountTable{Column: column, Entries: entries}
}

// Total returns the sum of all counts
func (t CountTable) Total() int {
	n := 0
	for _, e := range t.Entries {
		n += e.Count
	}
	return n
}

// Header returns the CSV header of the table
func (t CountTable) Header() []string {
	return []string{t.Column, "count"}
}

// Records returns the CSV body of the table
func (t CountTable) Records() [][]string {
	records := make([][]string, len(t.Entries))
	for i, e := range t.Entries {
		records[i] = []string{e.Value, strconv.Itoa(e.Count)}
	}
	return records
}

func (t CountTable) String() string {
	if len(t.Entries) == 0 {
		return fmt.Sprintf("%s: (no rows)", t.Column)
	}
	var b strings.Builder
	for i, e := range t.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", e.Value, e.Count)
	}
	return b.String()
}

// CrossTab counts co-occurrences of two categorical columns. Rows and
// columns are sorted lexicographically; absent combinations count zero.
type CrossTab struct {
	RowKey string
	Rows   []string
	Cols   []string
	Counts [][]int
}

// crossTabulate counts (row, col) pairs where both cells are present.
func crossTabulate(rowKey string, rows, cols []dataset.Value) CrossTab {
	type pair struct{ r, c string }
	counts := make(map[pair]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for i := range rows {
		if !rows[i].Valid || !cols[i].Valid {
			continue
		}
		counts[pair{rows[i].S, cols[i].S}]++
		rowSet[rows[i].S] = struct{}{}
		colSet[cols[i].S] = struct{}{}
	}

	ct := CrossTab{RowKey: rowKey, Rows: sortedKeys(rowSet), Cols: sortedKeys(colSet)}
	ct.Counts = make([][]int, len(ct.Rows))
	for i, r := range ct.Rows {
		ct.Counts[i] = make([]int, len(ct.Cols))
		for j, c := range ct.Cols {
			ct.Counts[i][j] = counts[pair{r, c}]
		}
	}
	return ct
}

// Count returns the cell for a row and column value, zero when absent
func (ct CrossTab) Count(row, col string) int {
	i := sort.SearchStrings(ct.Rows, row)
	j := sort.SearchStrings(ct.Cols, col)
	if i == len(ct.Rows) || ct.Rows[i] != row || j == len(ct.Cols) || ct.Cols[j] != col {
		return 0
	}
	return ct.Counts[i][j]
}

// Header returns the CSV header: the row key followed by every column value
func (ct CrossTab) Header() []string {
	return append([]string{ct.RowKey}, ct.Cols...)
}

// Records returns the CSV body of the cross-tabulation
func (ct CrossTab) Records() [][]string {
	records := make([][]string, len(ct.Rows))
	for i, r := range ct.Rows {
		record := make([]string, 0, len(ct.Cols)+1)
		record = append(record, r)
		for _, n := range ct.Counts[i] {
			record = append(record, strconv.Itoa(n))
		}
		records[i] = record
	}
	return records
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
