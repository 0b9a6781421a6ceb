package recorder

import (
	"context"

	"TacticalSentinel/internal/model"
)

// RunRecord holds everything written for one successful allocation run.
type RunRecord struct {
	RunID      string
	Trigger    model.TriggerType
	Allocation *model.Allocation
}

// Recorder persists run history for later analysis. Nothing in the
// allocation pipeline reads it back.
type Recorder interface {
	RecordAllocation(ctx context.Context, rec *RunRecord) error
	RecordFailure(ctx context.Context, runID string, trigger model.TriggerType, runErr error) error
	Close() error
}
