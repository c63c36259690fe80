package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// NumericSuffix marks a derived numeric companion column.
const NumericSuffix = "_Numeric"

// NumericSources are the semantically numeric survey columns that get a
// numeric companion column when present.
var NumericSources = []string{"Age", "Price", "Frequency"}

// Errors returned by Dataset accessors
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrColumnKind     = errors.New("column has the wrong kind")
	ErrLengthMismatch = errors.New("column length does not match dataset")
	ErrDuplicateName  = errors.New("duplicate column name")
)

// Kind distinguishes source text columns from derived numeric ones.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NumericName returns the companion column name for a source column.
func NumericName(source string) string {
	return source + NumericSuffix
}

// IsNumericName reports whether name follows the companion naming scheme.
// Input files may carry such names on plain text columns; only the companions
// of NumericSources are derived.
func IsNumericName(name string) bool {
	return strings.HasSuffix(name, NumericSuffix) && len(name) > len(NumericSuffix)
}

// Column is an immutable named column. Its backing slice is never exposed.
type Column struct {
	name string
	kind Kind
	text []Value
	num  []float64
}

// NewTextColumn copies values into a new text column.
func NewTextColumn(name string, values []Value) *Column {
	return &Column{name: name, kind: KindText, text: append([]Value(nil), values...)}
}

// NewNumericColumn copies values into a new numeric column. NaN is missing.
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{name: name, kind: KindNumeric, num: append([]float64(nil), values...)}
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells
func (c *Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.num)
	}
	return len(c.text)
}

// cell renders row i the way the CSV codec writes it.
func (c *Column) cell(i int) string {
	if c.kind == KindNumeric {
		return FormatNumber(c.num[i])
	}
	return c.text[i].String()
}

// Dataset is the unified, read-only survey table. Every derivation returns a
// new Dataset; columns are shared between derived datasets because they are
// never mutated after construction.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a dataset from columns of equal length and unique names.
func New(cols ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			d.rows = c.Len()
		}
		if c.Len() != d.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.name, c.Len(), d.rows)
		}
		if _, dup := d.index[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, c.name)
		}
		d.index[c.name] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Len returns the row count.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Missing returns the subset of names that are not columns of d, in order.
func (d *Dataset) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !d.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// KindOf returns the kind of a column.
func (d *Dataset) KindOf(name string) (Kind, bool) {
	i, ok := d.index[name]
	if !ok {
		return 0, false
	}
	return d.cols[i].kind, true
}

// Text returns a copy of a column as text values. Numeric columns are
// rendered with FormatNumber and NaN becomes missing.
func (d *Dataset) Text(name string) ([]Value, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	c := d.cols[i]
	if c.kind == KindText {
		return append([]Value(nil), c.text...), nil
	}
	out := make([]Value, len(c.num))
	for j, f := range c.num {
		if !math.IsNaN(f) {
			out[j] = Text(FormatNumber(f))
		}
	}
	return out, nil
}

// Numeric returns a copy of a numeric column.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	c := d.cols[i]
	if c.kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrColumnKind, name, c.kind)
	}
	return append([]float64(nil), c.num...), nil
}

// WithColumn returns a new dataset with c appended, or replacing the column
// of the same name in place. d itself is unchanged.
func (d *Dataset) WithColumn(c *Column) (*Dataset, error) {
	if c.Len() != d.rows && len(d.cols) > 0 {
		return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, c.name, c.Len(), d.rows)
	}
	cols := append([]*Column(nil), d.cols...)
	if i, ok := d.index[c.name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// DeriveNumeric adds the numeric companion of each listed source column that
// exists. Absent sources are skipped.
func (d *Dataset) DeriveNumeric(sources ...string) (*Dataset, error) {
	out := d
	for _, src := range sources {
		i, ok := d.index[src]
		if !ok {
			continue
		}
		c := d.cols[i]
		var values []float64
		if c.kind == KindNumeric {
			values = c.num
		} else {
			values = CoerceNumeric(c.text)
		}
		next, err := out.WithColumn(NewNumericColumn(NumericName(src), values))
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
