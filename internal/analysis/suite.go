package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
)

// Suite is the fixed set of analyzers, all writing to one results directory.
type Suite struct {
	analyzers []Analyzer
	byName    map[string]Analyzer
}

// NewSuite creates the five analyzers in their canonical order
func NewSuite(out *exporter.ArtifactWriter, logger *slog.Logger) *Suite {
	analyzers := []Analyzer{
		NewAgeFrequencyAnalyzer(out, logger),
		NewMarketingChannelsAnalyzer(out, logger),
		NewPackagingAnalyzer(out, logger),
		NewTasteAnalyzer(out, logger),
		NewBarriersAnalyzer(out, logger),
	}
	s := &Suite{analyzers: analyzers, byName: make(map[string]Analyzer, len(analyzers))}
	for _, a := range analyzers {
		s.byName[a.Name()] = a
	}
	return s
}

// Analyzers returns the analyzers in canonical order
func (s *Suite) Analyzers() []Analyzer {
	return append([]Analyzer(nil), s.analyzers...)
}

// Get looks an analyzer up by name
func (s *Suite) Get(name string) (Analyzer, error) {
	a, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer %q (available: %v)", name, s.Names())
	}
	return a, nil
}

// Names returns the analyzer names sorted alphabetically
func (s *Suite) Names() []string {
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
