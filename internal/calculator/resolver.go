package calculator

import (
	"errors"
	"fmt"
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// ErrUnresolvable marks a date whose benchmark cannot be determined. It is
// never fatal: the date is skipped for that benchmark.
var ErrUnresolvable = errors.New("benchmark unresolvable")

// PriceSource is the read side of the price store used by the resolver.
type PriceSource interface {
	At(t time.Time) (model.PriceTime, bool)
	FixAt(date time.Time) (decimal.Decimal, bool)
}

// Resolver finds the benchmark and window-start observations of a date.
type Resolver struct {
	Source PriceSource
	Window model.DayWindow
	// Range bounds the prior-day-fix lookback.
	Range model.DateRange
}

// NewResolver creates a Resolver.
func NewResolver(src PriceSource, window model.DayWindow, dates model.DateRange) *Resolver {
	return &Resolver{Source: src, Window: window, Range: dates}
}

// Resolve returns the benchmark and window-start observations for date.
func (r *Resolver) Resolve(date time.Time, spec model.BenchmarkSpec) (bench, start model.PriceTime, err error) {
	date = model.DateOf(date)

	start, ok := r.Source.At(r.Window.Start.On(date))
	if !ok {
		return bench, start, fmt.Errorf("%w: no bar at window start %s", ErrUnresolvable,
			r.Window.Start.On(date).Format(time.DateTime))
	}

	switch spec.Kind {
	case model.FixedTime:
		ts := spec.At.On(date)
		bench, ok = r.Source.At(ts)
		if !ok {
			return bench, start, fmt.Errorf("%w: no bar at %s", ErrUnresolvable, ts.Format(time.DateTime))
		}
	case model.PriorDayFix:
		bench, err = r.priorFix(date)
		if err != nil {
			return bench, start, err
		}
	default:
		return bench, start, fmt.Errorf("unknown benchmark kind %d", spec.Kind)
	}
	return bench, start, nil
}

// priorFix walks back one calendar day at a time from date-1 until a valid fix
// is found or the walk leaves the configured range.
func (r *Resolver) priorFix(date time.Time) (model.PriceTime, error) {
	for d := date.AddDate(0, 0, -1); r.Range.Contains(d); d = d.AddDate(0, 0, -1) {
		if p, ok := r.Source.FixAt(d); ok {
			return model.PriceTime{Price: p, Time: d}, nil
		}
	}
	return model.PriceTime{}, fmt.Errorf("%w: no valid fix in %s..%s before %s", ErrUnresolvable,
		r.Range.Start.Format(time.DateOnly), r.Range.End.Format(time.DateOnly), date.Format(time.DateOnly))
}
