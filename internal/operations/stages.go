package operations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strconv"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/analysis"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/dataset"
)

// DatasetLoader produces the unified dataset; *extract.Loader implements it
type DatasetLoader interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// ExtractStage loads the survey files and hands the dataset to the analysis steps
type ExtractStage struct {
	BaseStage
	loader  DatasetLoader
	logger  *slog.Logger
	options *StageOptions
}

// NewExtractStage creates the extraction Step
func NewExtractStage(loader DatasetLoader, logger *slog.Logger, options *StageOptions) *ExtractStage {
	if options == nil {
		options = &StageOptions{Handoff: HandoffMemory}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{
		BaseStage: NewBaseStage(StepIDExtract, StepNameExtract, nil),
		loader:    loader,
		logger:    logger.With(slog.String("step", StepIDExtract)),
		options:   options,
	}
}

// Validate checks the stage was wired with a loader and a hand-off target
func (s *ExtractStage) Validate(state *OperationState) error {
	if s.loader == nil {
		return fmt.Errorf("no loader configured")
	}
	if s.options.Handoff == HandoffFile && s.options.HandoffFile == "" {
		return fmt.Errorf("file hand-off requires a hand-off file path")
	}
	return nil
}

// Execute loads the dataset. Every load failure is retryable: input files
// may still be arriving.
func (s *ExtractStage) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return NewExecutionError(s.ID(), err, true)
	}

	rows := ds.Len()
	s.options.Metrics.RecordRows(ctx, rows)
	state.SetContext(ContextKeyRowCount, rows)

	switch s.options.Handoff {
	case HandoffFile:
		if err := dataset.SaveFile(s.options.HandoffFile, ds); err != nil {
			return NewExecutionError(s.ID(), fmt.Errorf("persist dataset: %w", err), true)
		}
		state.SetContext(ContextKeyHandoffFile, s.options.HandoffFile)
		s.logger.InfoContext(ctx, "Dataset persisted",
			slog.String("path", s.options.HandoffFile),
			slog.Int("rows", rows))
	default:
		state.SetContext(ContextKeyDataset, ds)
	}

	if stepState != nil {
		stepState.SetMetadata("rows", rows)
		stepState.SetMetadata("columns", len(ds.Columns()))
		stepState.UpdateProgress(100, fmt.Sprintf("Extracted %d rows", rows))
	}
	return nil
}

// AnalysisStage runs one analyzer against the extracted dataset
type AnalysisStage struct {
	BaseStage
	analyzer analysis.Analyzer
	logger   *slog.Logger
	options  *StageOptions
}

// NewAnalysisStage creates an analysis Step named after its analyzer and
// depending on extraction
func NewAnalysisStage(analyzer analysis.Analyzer, logger *slog.Logger, options *StageOptions) *AnalysisStage {
	if options == nil {
		options = &StageOptions{Handoff: HandoffMemory}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisStage{
		BaseStage: NewBaseStage(analyzer.Name(), analyzer.Name(), []string{StepIDExtract}),
		analyzer:  analyzer,
		logger:    logger.With(slog.String("step", analyzer.Name())),
		options:   options,
	}
}

// Execute runs the analyzer. Missing columns turn into a skip.
func (s *AnalysisStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := s.dataset(state)
	if err != nil {
		return err
	}

	res, err := s.analyzer.Analyze(ctx, ds)
	if err != nil {
		return NewExecutionError(s.ID(), err, true)
	}
	state.SetContext(ResultKey(s.ID()), res)
	s.options.Metrics.RecordArtifacts(ctx, s.ID(), len(res.Artifacts))

	if stepState := state.GetStage(s.ID()); stepState != nil {
		if len(res.Artifacts) > 0 {
			stepState.SetMetadata("artifacts", res.Artifacts)
		}
		if res.Correlation != nil {
			stepState.SetMetadata("correlation", formatCorrelation(*res.Correlation))
		}
		if res.Skipped() {
			stepState.SetMetadata("missing_columns", res.Missing)
		} else {
			stepState.UpdateProgress(100, res.Summary)
		}
	}

	if res.Skipped() {
		return NewSkipError(s.ID(), res.Reason)
	}
	return nil
}

// dataset returns the in-memory hand-off when present, else reads the file
func (s *AnalysisStage) dataset(state *OperationState) (*dataset.Dataset, error) {
	if v, ok := state.GetContext(ContextKeyDataset); ok {
		if ds, ok := v.(*dataset.Dataset); ok && ds != nil {
			return ds, nil
		}
	}

	path := s.options.HandoffFile
	if v, ok := state.GetContext(ContextKeyHandoffFile); ok {
		if p, ok := v.(string); ok && p != "" {
			path = p
		}
	}
	if path == "" {
		return nil, NewExecutionError(s.ID(), errors.New("no dataset available and no hand-off file configured"), false)
	}

	ds, err := dataset.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewExecutionError(s.ID(), fmt.Errorf("hand-off file %s not found, run extraction first: %w", path, err), false)
		}
		return nil, NewExecutionError(s.ID(), fmt.Errorf("read hand-off file: %w", err), true)
	}
	s.logger.Debug("Dataset loaded from hand-off file",
		slog.String("path", path),
		slog.Int("rows", ds.Len()))
	return ds, nil
}

// formatCorrelation keeps undefined values JSON-safe
func formatCorrelation(r float64) string {
	if math.IsNaN(r) {
		return "NaN"
	}
	return strconv.FormatFloat(r, 'f', 4, 64)
}

// NewPipelineRegistry registers extraction followed by one step per analyzer
// of the suite, each depending only on extraction.
func NewPipelineRegistry(loader DatasetLoader, suite *analysis.Suite, logger *slog.Logger, options *StageOptions) (*Registry, error) {
	registry := NewRegistry()
	if err := registry.Register(NewExtractStage(loader, logger, options)); err != nil {
		return nil, err
	}
	for _, a := range suite.Analyzers() {
		if err := registry.Register(NewAnalysisStage(a, logger, options)); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}
