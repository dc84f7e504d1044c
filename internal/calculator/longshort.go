package calculator

import (
	"time"

	"PipSentinel/internal/model"
)

// Positions classifies each scanned day by comparing the close at the window
// end with that day's benchmark price. Days without an exit bar are omitted.
func Positions(src PriceSource, window model.DayWindow, results []*ScanResult) map[string]map[time.Time]model.Position {
	out := make(map[string]map[time.Time]model.Position, len(results))
	for _, r := range results {
		days := make(map[time.Time]model.Position, len(r.Days))
		for date, d := range r.Days {
			exit, ok := src.At(window.End.On(date))
			if !ok {
				continue
			}
			days[date] = model.Classify(d.Benchmark.Price, exit.Price)
		}
		out[r.Benchmark.Label()] = days
	}
	return out
}
