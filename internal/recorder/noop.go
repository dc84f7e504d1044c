package recorder

import (
	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunEvent) error { return nil }

func (n *NoopRecorder) RecordExtrema(_, _ string, _ []model.DailyExtremum) error { return nil }

func (n *NoopRecorder) RecordSkips(_, _ string, _ []calculator.Skip) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
