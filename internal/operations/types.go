package operations

import (
	"time"
)

// Extraction step identity. Analysis steps use the analyzer name as their ID.
const (
	StepIDExtract   = "extract_and_load_data"
	StepNameExtract = "Extract and Load Data"
)

// Context keys for operation state
const (
	ContextKeyDataset     = "dataset"
	ContextKeyHandoffFile = "handoff_file"
	ContextKeyRowCount    = "row_count"
	contextKeyResult      = "result:"
)

// ResultKey is the context key under which a step stores its outcome
func ResultKey(stepID string) string {
	return contextKeyResult + stepID
}

// Run triggers
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
	TriggerAPI      = "api"
)

// WebSocket event types - using frontend format
const (
	EventTypeOperationSnapshot = "operation:snapshot"
)

// Default timeouts
const (
	DefaultStageTimeout = 10 * time.Minute
)

// ExecutionMode defines how steps are executed
type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeParallel   ExecutionMode = "parallel"
)

// HandoffMode defines how the extracted dataset reaches the analysis steps
type HandoffMode string

const (
	HandoffMemory HandoffMode = "memory"
	HandoffFile   HandoffMode = "file"
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration: one retry after
// five minutes.
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 5 * time.Minute,
		MaxDelay:     30 * time.Minute,
		Multiplier:   1.0,
	}
}

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID      string `json:"id"`
	Step    string `json:"step,omitempty"` // empty runs the full pipeline
	Trigger string `json:"trigger,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
