package calculator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PipSentinel/internal/model"
	"PipSentinel/internal/store"

	"golang.org/x/sync/errgroup"
)

// Observer receives the per-day outcome of a scan. Implementations must be
// safe for concurrent use when ScanAll is used.
type Observer interface {
	DayScanned(benchmark string, date time.Time)
	DaySkipped(benchmark string, date time.Time, reason error)
}

type nopObserver struct{}

func (nopObserver) DayScanned(string, time.Time)        {}
func (nopObserver) DaySkipped(string, time.Time, error) {}

// Skip records a date left out of a benchmark's result.
type Skip struct {
	Date   time.Time
	Reason error
}

// ScanResult is the output of one pass over the session series.
type ScanResult struct {
	Benchmark model.BenchmarkSpec
	Days      map[time.Time]model.DailyExtremum
	Skipped   []Skip
}

// Sorted returns the daily results ordered by date.
func (r *ScanResult) Sorted() []model.DailyExtremum {
	out := make([]model.DailyExtremum, 0, len(r.Days))
	for _, d := range r.Days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Scanner drives a Tracker per date over a chronologically ordered series.
type Scanner struct {
	Resolver *Resolver
	Observer Observer
}

// NewScanner creates a Scanner. A nil observer discards scan events.
func NewScanner(r *Resolver, obs Observer) *Scanner {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Scanner{Resolver: r, Observer: obs}
}

// Scan computes one benchmark's daily extrema over obs. The series is first
// partitioned by date and every date resolved; a date whose benchmark cannot
// be resolved is skipped and reported to the Observer, while a resolved date
// with no observation after its benchmark fails the whole scan before any
// tracker is updated. ctx is checked at every date boundary.
func (s *Scanner) Scan(ctx context.Context, obs []model.PriceTime, spec model.BenchmarkSpec) (*ScanResult, error) {
	if err := checkOrdered(obs); err != nil {
		return nil, err
	}
	label := spec.Label()
	days := partition(obs)

	for i := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := &days[i]
		bench, start, err := s.Resolver.Resolve(d.date, spec)
		if err != nil {
			d.skip = err
			continue
		}
		if last := d.obs[len(d.obs)-1]; !last.After(bench) {
			return nil, fmt.Errorf("%w: %s %s, benchmark at %s, last observation at %s",
				store.ErrNoEligibleObservations, label, d.date.Format(time.DateOnly),
				bench.Time.Format(time.DateTime), last.Time.Format(time.DateTime))
		}
		d.tracker = NewTracker(d.date, bench, start, s.Resolver.Window)
	}

	res := &ScanResult{Benchmark: spec, Days: make(map[time.Time]model.DailyExtremum, len(days))}
	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.tracker == nil {
			res.Skipped = append(res.Skipped, Skip{Date: d.date, Reason: d.skip})
			s.Observer.DaySkipped(label, d.date, d.skip)
			continue
		}
		for _, o := range d.obs {
			d.tracker.Update(o)
		}
		x := d.tracker.Finalize()
		res.Days[x.Date] = x
		s.Observer.DayScanned(label, x.Date)
	}
	return res, nil
}

type scanDay struct {
	date    time.Time
	obs     []model.PriceTime
	tracker *Tracker
	skip    error
}

// partition splits chronological observations into per-date runs sharing
// obs's backing array.
func partition(obs []model.PriceTime) []scanDay {
	var days []scanDay
	from := 0
	for i := 1; i <= len(obs); i++ {
		if i == len(obs) || !obs[i].Date().Equal(obs[from].Date()) {
			days = append(days, scanDay{date: obs[from].Date(), obs: obs[from:i]})
			from = i
		}
	}
	return days
}

// ScanAll runs one independent pass per benchmark concurrently. Results are
// returned in the order of specs.
func (s *Scanner) ScanAll(ctx context.Context, obs []model.PriceTime, specs []model.BenchmarkSpec) ([]*ScanResult, error) {
	results := make([]*ScanResult, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			r, err := s.Scan(ctx, obs, spec)
			if err != nil {
				return fmt.Errorf("scan %s: %w", spec.Label(), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOrdered(obs []model.PriceTime) error {
	for i := 1; i < len(obs); i++ {
		if !obs[i].Time.After(obs[i-1].Time) {
			return fmt.Errorf("%w: %s follows %s", store.ErrOutOfOrder,
				obs[i].Time.Format(time.DateTime), obs[i-1].Time.Format(time.DateTime))
		}
	}
	return nil
}
