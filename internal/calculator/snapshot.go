package calculator

import (
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// BarSource looks up a single minute bar.
type BarSource interface {
	Bar(t time.Time) (model.Bar, bool)
}

// MinuteColumn is one time-of-day and price field of the selected minute data.
type MinuteColumn struct {
	At    model.TimeOfDay
	Field model.Field
}

// Label renders the column as "10:30:00 Close".
func (c MinuteColumn) Label() string {
	return c.At.String() + " " + string(c.Field)
}

// MinuteSection selects every minute of an inclusive window for each field.
type MinuteSection struct {
	Window model.DayWindow
	Fields []model.Field
}

// Columns expands the section one minute at a time.
func (s MinuteSection) Columns() []MinuteColumn {
	var cols []MinuteColumn
	for t := s.Window.Start; t <= s.Window.End; t += 60 {
		for _, f := range s.Fields {
			cols = append(cols, MinuteColumn{At: t, Field: f})
		}
	}
	return cols
}

// MinuteSnapshots reads every column on every date. A missing minute bar leaves
// its cell out of the result.
func MinuteSnapshots(src BarSource, dates []time.Time, cols []MinuteColumn) map[time.Time]map[MinuteColumn]decimal.Decimal {
	out := make(map[time.Time]map[MinuteColumn]decimal.Decimal, len(dates))
	for _, date := range dates {
		row := make(map[MinuteColumn]decimal.Decimal)
		for _, c := range cols {
			if b, ok := src.Bar(c.At.On(date)); ok {
				row[c] = b.Price(c.Field)
			}
		}
		if len(row) > 0 {
			out[model.DateOf(date)] = row
		}
	}
	return out
}
