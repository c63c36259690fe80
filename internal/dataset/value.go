package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Value is a text cell. Valid is false for the missing-value marker, which
// is distinct from a present empty string.
type Value struct {
	S     string
	Valid bool
}

// Text returns a present text value.
func Text(s string) Value { return Value{S: s, Valid: true} }

// Missing returns the missing-value marker.
func Missing() Value { return Value{} }

// String renders the value, with "" for missing.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.S
}

// naTokens are the cell spellings read as missing, matching the usual CSV
// tooling defaults.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNAToken reports whether a raw CSV cell denotes a missing value.
func IsNAToken(s string) bool {
	_, ok := naTokens[s]
	return ok
}

// ParseCell converts a raw CSV cell into a text value.
func ParseCell(s string) Value {
	if IsNAToken(s) {
		return Missing()
	}
	return Text(s)
}

// ParseNumber is the best-effort numeric coercion used for every derived
// numeric column. Anything that is not a finite decimal number becomes NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if IsNAToken(s) {
		return math.NaN()
	}
	// strconv accepts hex floats and underscores; survey data never means those.
	if strings.ContainsAny(s, "xX_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// CoerceNumeric applies ParseNumber to every present value.
func CoerceNumeric(values []Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !v.Valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = ParseNumber(v.S)
	}
	return out
}

// FormatNumber renders a numeric cell with the shortest representation that
// parses back to the same float64; NaN renders as "".
func FormatNumber(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
