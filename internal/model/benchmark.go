package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BenchmarkKind distinguishes the two benchmark variants.
type BenchmarkKind int

const (
	// FixedTime benchmarks take the minute close at a time of day on the scanned date.
	FixedTime BenchmarkKind = iota
	// PriorDayFix benchmarks take the most recent valid fixing rate before the scanned date.
	PriorDayFix
)

// PriorDayFixLabel is the column group label of the prior day fix benchmark.
const PriorDayFixLabel = "PDFX"

// BenchmarkSpec selects the reference price a day's movements are measured against.
type BenchmarkSpec struct {
	Kind BenchmarkKind
	At   TimeOfDay // FixedTime only
}

// Fixed returns a FixedTime benchmark at t.
func Fixed(t TimeOfDay) BenchmarkSpec {
	return BenchmarkSpec{Kind: FixedTime, At: t}
}

// PriorFix returns the PriorDayFix benchmark.
func PriorFix() BenchmarkSpec {
	return BenchmarkSpec{Kind: PriorDayFix}
}

// Label names the benchmark in reports: "10:30:00" or "PDFX".
func (b BenchmarkSpec) Label() string {
	if b.Kind == PriorDayFix {
		return PriorDayFixLabel
	}
	return b.At.String()
}

// DailyExtremum is the finalized result of scanning one date against one benchmark.
type DailyExtremum struct {
	Date        time.Time
	Benchmark   PriceTime
	WindowStart PriceTime

	MaxPipUp   decimal.Decimal
	MaxUpAt    PriceTime
	MaxPipDown decimal.Decimal
	MaxDownAt  PriceTime
}

// PeriodAverage summarises the minute closes of one date inside a section.
type PeriodAverage struct {
	Date      time.Time
	Mean      decimal.Decimal
	TimeOfMin TimeOfDay
	TimeOfMax TimeOfDay
}
