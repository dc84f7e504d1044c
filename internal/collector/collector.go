package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"
	"PipSentinel/internal/report"
	"PipSentinel/internal/store"

	"golang.org/x/sync/errgroup"
)

// MemorySource serves fixed in-memory data, for development and testing.
type MemorySource struct {
	Bars  map[string][]model.Bar
	Fix   map[string][]model.Fix
	Daily map[string][]model.Bar
}

// Name identifies the source in logs.
func (m *MemorySource) Name() string { return "memory" }

// MinuteBars returns a copy of pair's minute bars, or an error for an unknown pair.
func (m *MemorySource) MinuteBars(_ context.Context, pair string) ([]model.Bar, error) {
	bars, ok := m.Bars[pair]
	if !ok {
		return nil, fmt.Errorf("no minute data for %s", pair)
	}
	return append([]model.Bar(nil), bars...), nil
}

// Fixes returns pair's fixing rates; an unknown pair has none.
func (m *MemorySource) Fixes(_ context.Context, pair string) ([]model.Fix, error) {
	return m.Fix[pair], nil
}

// DailyBars returns pair's daily bars; an unknown pair has none.
func (m *MemorySource) DailyBars(_ context.Context, pair string) ([]model.Bar, error) {
	return m.Daily[pair], nil
}

// Options selects what Collect computes.
type Options struct {
	Window     model.DayWindow
	Dates      model.DateRange
	Benchmarks []model.BenchmarkSpec
	Shifts     []model.ClockShift

	IncludeOHLC    bool
	LongShort      bool
	MinuteSections []calculator.MinuteSection
	AverageWindows []model.DayWindow
}

// Summary describes one pair's analysis.
type Summary struct {
	Pair     string
	Bars     int
	Days     int
	Scans    []*calculator.ScanResult
	Duration time.Duration
}

// Skipped counts the skipped days over all benchmarks.
func (s *Summary) Skipped() int {
	n := 0
	for _, r := range s.Scans {
		n += len(r.Skipped)
	}
	return n
}

// Collector orchestrates data loading and the per-pair analytics.
type Collector struct {
	Source   Source
	Options  Options
	Observer func(pair string) calculator.Observer
}

// NewCollector creates a new Collector.
func NewCollector(src Source, opts Options) *Collector {
	return &Collector{Source: src, Options: opts}
}

// Load reads all sources of pair, applies clock shifts and builds the store.
func (c *Collector) Load(ctx context.Context, pair string) (*store.Series, error) {
	var (
		bars, daily []model.Bar
		fixes       []model.Fix
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if bars, err = c.Source.MinuteBars(ctx, pair); err != nil {
			return fmt.Errorf("fetch minute bars: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if fixes, err = c.Source.Fixes(ctx, pair); err != nil {
			return fmt.Errorf("fetch fixes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if daily, err = c.Source.DailyBars(ctx, pair); err != nil {
			return fmt.Errorf("fetch daily bars: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bars = AdjustClock(bars, c.Options.Shifts)
	bars = c.inRange(bars)
	return store.NewSeries(pair, bars, fixes, daily)
}

// inRange keeps the bars dated inside the configured range. Fix lookback is
// bounded by the same range.
func (c *Collector) inRange(bars []model.Bar) []model.Bar {
	if c.Options.Dates.Start.IsZero() {
		return bars
	}
	out := bars[:0]
	for _, b := range bars {
		if c.Options.Dates.Contains(b.Time) {
			out = append(out, b)
		}
	}
	return out
}

// Collect loads pair and computes every configured metric into one table.
func (c *Collector) Collect(ctx context.Context, pair string) (*report.Table, *Summary, error) {
	started := time.Now()
	s, err := c.Load(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	tbl, sum, err := c.Analyze(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	sum.Duration = time.Since(started)
	return tbl, sum, nil
}

// Analyze runs the benchmark scans and the supplementary metrics over s.
func (c *Collector) Analyze(ctx context.Context, s *store.Series) (*report.Table, *Summary, error) {
	opts := c.Options
	var obs calculator.Observer
	if c.Observer != nil {
		obs = c.Observer(s.Pair())
	}
	scanner := calculator.NewScanner(calculator.NewResolver(s, opts.Window, opts.Dates), obs)

	session := s.Between(opts.Window)
	scans, err := scanner.ScanAll(ctx, session, opts.Benchmarks)
	if err != nil {
		return nil, nil, err
	}
	sum := &Summary{Pair: s.Pair(), Bars: s.Len(), Days: len(s.Dates()), Scans: scans}
	for _, r := range scans {
		if n := len(r.Skipped); n > 0 {
			log.Printf("[WARN] %s %s: %d of %d days skipped, first: %v",
				s.Pair(), r.Benchmark.Label(), n, n+len(r.Days), r.Skipped[0].Reason)
		}
	}

	tbl := report.NewTable()
	if opts.IncludeOHLC {
		daily := s.Daily()
		if len(daily) == 0 {
			daily = calculator.DailyFromMinutes(s.BarsBetween(model.FullDay))
		}
		tbl.Join(report.OHLC(daily))
	}

	order, byLabel := report.FromScans(scans)
	tbl.Join(report.Assemble(order, byLabel, s.Fixes(opts.Dates)))

	if opts.LongShort {
		tbl.Join(report.Positions(order, calculator.Positions(s, opts.Window, scans)))
	}
	if len(opts.MinuteSections) > 0 {
		var cols []calculator.MinuteColumn
		for _, sec := range opts.MinuteSections {
			cols = append(cols, sec.Columns()...)
		}
		tbl.Join(report.MinuteData(cols, calculator.MinuteSnapshots(s, s.Dates(), cols)))
	}
	for _, w := range opts.AverageWindows {
		tbl.Join(report.Averages(w, calculator.PeriodAverages(s.BarsBetween(w), w)))
	}
	return tbl, sum, nil
}
