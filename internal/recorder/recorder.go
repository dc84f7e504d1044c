package recorder

import (
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"
)

// RunEvent summarises one pair within a batch run.
type RunEvent struct {
	RunID     string // run folder name, shared by all pairs of a batch
	Pair      string
	StartedAt time.Time
	Duration  time.Duration
	Bars      int
	Days      int
	Skipped   int
	Output    string // workbook path, empty on failure
	Status    string // "OK" or "FAILED"
	Error     string
}

// Recorder persists run history and results for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordExtrema(pair, benchmark string, days []model.DailyExtremum) error
	RecordSkips(pair, benchmark string, skips []calculator.Skip) error
	Close() error
}
