package collector

import (
	"context"

	"PipSentinel/internal/model"
)

// Source defines the interface for reading the raw price data of a pair.
type Source interface {
	MinuteBars(ctx context.Context, pair string) ([]model.Bar, error)
	Fixes(ctx context.Context, pair string) ([]model.Fix, error)
	// DailyBars may return nil when no daily source is configured.
	DailyBars(ctx context.Context, pair string) ([]model.Bar, error)
	Name() string
}
