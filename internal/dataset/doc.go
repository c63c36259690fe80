// Package dataset implements the unified survey table shared by the loader
// and every analyzer.
//
// A Dataset is an ordered set of immutable columns. Source columns hold text
// cells (Value) and derived companion columns hold float64 with NaN as the
// missing-value marker. Derivations such as WithColumn return a new Dataset,
// so a column added by one analyzer is never visible to another.
//
// The CSV codec (Encode, Decode, SaveFile, LoadFile) is the hand-off format
// between the extract step and analysis steps running in other processes.
package dataset
