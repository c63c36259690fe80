package operations

import (
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
)

// WebSocketHub interface for sending WebSocket messages
type WebSocketHub interface {
	BroadcastUpdate(eventType, step, status string, metadata interface{})
}

// StageOptions contains optional dependencies for steps
type StageOptions struct {
	// Handoff selects how the dataset travels from extraction to analysis
	Handoff HandoffMode
	// HandoffFile is the serialized dataset path used in file mode and by
	// single-step analysis runs
	HandoffFile string
	Metrics     *infrastructure.PipelineMetrics
}
