package calculator

import (
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Tracker accumulates the extreme pip movements of one date against one
// benchmark. It is Open until Finalize is called, after which Update is a no-op.
type Tracker struct {
	date      time.Time
	bench     model.PriceTime
	start     model.PriceTime
	up, down  decimal.Decimal
	upAt      model.PriceTime
	downAt    model.PriceTime
	finalized bool
}

// NewTracker seeds a Tracker. When the benchmark lies inside the window both
// extrema start at zero on the benchmark itself; otherwise they start from the
// window-start observation's movement, clamped so up >= 0 and down <= 0.
func NewTracker(date time.Time, bench, start model.PriceTime, window model.DayWindow) *Tracker {
	t := &Tracker{date: model.DateOf(date), bench: bench, start: start}
	if window.Contains(bench.Time) && model.DateOf(bench.Time).Equal(t.date) {
		t.up, t.down = decimal.Zero, decimal.Zero
		t.upAt, t.downAt = bench, bench
		return t
	}
	m := start.PipsFrom(bench)
	t.up = decimal.Max(m, decimal.Zero)
	t.down = decimal.Min(m, decimal.Zero)
	t.upAt, t.downAt = start, start
	return t
}

// Update folds one observation into the running extrema. Observations at or
// before the benchmark are ignored; ties keep the earlier observation.
func (t *Tracker) Update(obs model.PriceTime) {
	if t.finalized || !obs.After(t.bench) {
		return
	}
	m := obs.PipsFrom(t.bench)
	if m.GreaterThan(t.up) {
		t.up, t.upAt = m, obs
	}
	if m.LessThan(t.down) {
		t.down, t.downAt = m, obs
	}
}

// MaxPipUp returns the current upward extremum.
func (t *Tracker) MaxPipUp() decimal.Decimal { return t.up }

// MaxPipDown returns the current downward extremum.
func (t *Tracker) MaxPipDown() decimal.Decimal { return t.down }

// Finalized reports whether Finalize has been called.
func (t *Tracker) Finalized() bool { return t.finalized }

// Finalize closes the tracker and returns its result. Calling it again returns
// the same value.
func (t *Tracker) Finalize() model.DailyExtremum {
	t.finalized = true
	return model.DailyExtremum{
		Date:        t.date,
		Benchmark:   t.bench,
		WindowStart: t.start,
		MaxPipUp:    t.up,
		MaxUpAt:     t.upAt,
		MaxPipDown:  t.down,
		MaxDownAt:   t.downAt,
	}
}
