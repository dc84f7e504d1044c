package report

import (
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

const (
	MetricBenchmarkPrice    = "Benchmark Price"
	MetricMaxPipUp          = "Max Pip Up"
	MetricPriceAtMaxPipUp   = "Price at Max Pip Up"
	MetricTimeAtMaxPipUp    = "Time at Max Pip Up"
	MetricMaxPipDown        = "Max Pip Down"
	MetricPriceAtMaxPipDown = "Price at Max Pip Down"
	MetricTimeAtMaxPipDown  = "Time at Max Pip Down"
	MetricCurrentDayFix     = "Current Day Fix"

	MetricMean      = "Mean"
	MetricTimeOfMin = "Time for Min"
	MetricTimeOfMax = "Time for Max"

	GroupOHLC       = "OHLC"
	GroupMinuteData = "Selected Minute Data"
	GroupLongShort  = "Long/Short"
)

// ExtremumMetrics are the columns of every benchmark group, in display order.
var ExtremumMetrics = []string{
	MetricBenchmarkPrice,
	MetricMaxPipUp,
	MetricPriceAtMaxPipUp,
	MetricTimeAtMaxPipUp,
	MetricMaxPipDown,
	MetricPriceAtMaxPipDown,
	MetricTimeAtMaxPipDown,
}

// Assemble lays out one column group per benchmark label, in the order given,
// outer-joined on date. The prior day fix group also carries the valid current
// day fixes, which add rows of their own.
func Assemble(order []string, byLabel map[string]map[time.Time]model.DailyExtremum, fixes []model.Fix) *Table {
	t := NewTable()
	for _, label := range order {
		if label == model.PriorDayFixLabel {
			t.AddColumn(Column{label, MetricCurrentDayFix})
			for _, f := range fixes {
				if f.Valid {
					t.Set(f.Date, Column{label, MetricCurrentDayFix}, f.Price)
				}
			}
		}
		t.Join(Extrema(label, byLabel[label]))
	}
	return t
}

// Extrema renders one benchmark's results as a column group.
func Extrema(label string, days map[time.Time]model.DailyExtremum) *Table {
	t := NewTable()
	for _, m := range ExtremumMetrics {
		t.AddColumn(Column{label, m})
	}
	for date, d := range days {
		cells := []any{
			d.Benchmark.Price,
			d.MaxPipUp,
			d.MaxUpAt.Price,
			model.TimeOfDayOf(d.MaxUpAt.Time),
			d.MaxPipDown,
			d.MaxDownAt.Price,
			model.TimeOfDayOf(d.MaxDownAt.Time),
		}
		for i, m := range ExtremumMetrics {
			t.Set(date, Column{label, m}, cells[i])
		}
	}
	return t
}

// FromScans converts scanner output into the arguments of Assemble.
func FromScans(results []*calculator.ScanResult) ([]string, map[string]map[time.Time]model.DailyExtremum) {
	order := make([]string, 0, len(results))
	byLabel := make(map[string]map[time.Time]model.DailyExtremum, len(results))
	for _, r := range results {
		label := r.Benchmark.Label()
		order = append(order, label)
		byLabel[label] = r.Days
	}
	return order, byLabel
}

// OHLC renders daily bars.
func OHLC(daily []model.Bar) *Table {
	t := NewTable()
	for _, f := range model.Fields {
		t.AddColumn(Column{GroupOHLC, string(f)})
	}
	for _, b := range daily {
		for _, f := range model.Fields {
			t.Set(b.Time, Column{GroupOHLC, string(f)}, b.Price(f))
		}
	}
	return t
}

// MinuteData renders selected minute snapshots.
func MinuteData(cols []calculator.MinuteColumn, rows map[time.Time]map[calculator.MinuteColumn]decimal.Decimal) *Table {
	t := NewTable()
	for _, c := range cols {
		t.AddColumn(Column{GroupMinuteData, c.Label()})
	}
	for date, row := range rows {
		for c, v := range row {
			t.Set(date, Column{GroupMinuteData, c.Label()}, v)
		}
	}
	return t
}

// Averages renders the period averages of one section.
func Averages(section model.DayWindow, avgs []model.PeriodAverage) *Table {
	label := section.Label()
	t := NewTable()
	for _, m := range []string{MetricMean, MetricTimeOfMin, MetricTimeOfMax} {
		t.AddColumn(Column{label, m})
	}
	for _, a := range avgs {
		t.Set(a.Date, Column{label, MetricMean}, a.Mean)
		t.Set(a.Date, Column{label, MetricTimeOfMin}, a.TimeOfMin)
		t.Set(a.Date, Column{label, MetricTimeOfMax}, a.TimeOfMax)
	}
	return t
}

// Positions renders long/short classifications, one column per benchmark.
func Positions(order []string, byLabel map[string]map[time.Time]model.Position) *Table {
	t := NewTable()
	for _, label := range order {
		c := Column{GroupLongShort, label + " Position"}
		t.AddColumn(c)
		for date, p := range byLabel[label] {
			t.Set(date, c, string(p))
		}
	}
	return t
}
