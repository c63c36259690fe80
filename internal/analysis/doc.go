// Package analysis holds the five survey analyzers run after extraction.
//
// Each analyzer reads the unified dataset, computes one statistic or
// aggregation and writes its artifacts through an exporter.ArtifactWriter:
//
//	analyze_age_vs_frequency               age_vs_frequency.png
//	marketing_channels_by_age_group        marketing_channels_by_age_group.csv
//	packaging_preferences_health_concerns  packaging_preferences_health_concerns.csv
//	taste_ratings_vs_price_range           taste_ratings_vs_price_range.csv
//	reasons_new_brands_urban_rural         urban_reasons.csv, rural_reasons.csv
//
// An analyzer whose required columns are absent returns a Result with
// StatusSkipped and writes nothing. Analyzers never mutate the dataset and
// are safe to run concurrently; rerunning one overwrites its artifacts with
// identical content.
//
// The pure compute functions (AgeFrequencyCorrelation,
// MarketingChannelsByAgeGroup, PackagingPreferences, TasteByPriceRange,
// ReasonsByArea) are exported for callers that want the numbers without files.
package analysis
