// Package exporter writes analysis artifacts: CSV tables and PNG scatter
// charts rendered with gonum/plot.
//
// ArtifactWriter is rooted at the results directory and replaces each file
// atomically through a temporary file and a rename.
//
// Example usage:
//
//	w := exporter.NewArtifactWriter(paths.ResultsDir, logger)
//	path, err := w.WriteSimpleCSV("urban_reasons.csv",
//		[]string{"Reason", "count"},
//		[][]string{{"Cost", "3"}})
//
//	path, err = w.WriteScatterPNG("age_vs_frequency.png", exporter.ScatterChart{
//		Title:  "Age vs Frequency of Cold Drink Consumption",
//		XLabel: "Age",
//		YLabel: "Frequency",
//		Points: points,
//	})
package exporter
