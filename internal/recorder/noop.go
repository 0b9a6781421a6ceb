package recorder

import (
	"context"

	"TacticalSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAllocation(context.Context, *RunRecord) error { return nil }
func (n *NoopRecorder) RecordFailure(context.Context, string, model.TriggerType, error) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
