// Package extract implements the loader stage: it discovers the survey CSV
// files of the input directory and merges them into one dataset.Dataset.
package extract
