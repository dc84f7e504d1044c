// Package store holds the validated, read-only price data of one currency pair.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySeries        = errors.New("empty price series")
	ErrOutOfOrder         = errors.New("timestamps not strictly increasing")
	ErrDuplicateTimestamp = errors.New("duplicate timestamp")
	ErrInvalidPrice       = errors.New("non-positive price")

	// ErrNoEligibleObservations marks a date whose session holds no
	// observation after its benchmark.
	ErrNoEligibleObservations = errors.New("no observation after benchmark")
)

// Series is the time-indexed minute series of a pair plus its fixing rates and
// optional daily bars. It is immutable once constructed and safe for concurrent reads.
type Series struct {
	pair  string
	bars  []model.Bar
	index map[int64]int
	fixes map[int64]model.Fix
	daily []model.Bar
}

// NewSeries validates the inputs and builds the lookup indexes. Minute bars must
// already be sorted with strictly increasing timestamps; the series is never
// re-sorted here.
func NewSeries(pair string, bars []model.Bar, fixes []model.Fix, daily []model.Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", pair, ErrEmptySeries)
	}
	s := &Series{
		pair:  pair,
		bars:  make([]model.Bar, len(bars)),
		index: make(map[int64]int, len(bars)),
		fixes: make(map[int64]model.Fix, len(fixes)),
	}
	for i, b := range bars {
		b.Time = b.Time.UTC()
		if i > 0 && b.Time.Equal(s.bars[i-1].Time) {
			return nil, fmt.Errorf("%s: %w: %s at row %d", pair, ErrDuplicateTimestamp,
				b.Time.Format(time.DateTime), i)
		}
		if i > 0 && b.Time.Before(s.bars[i-1].Time) {
			return nil, fmt.Errorf("%s: %w: %s follows %s at row %d", pair, ErrOutOfOrder,
				b.Time.Format(time.DateTime), s.bars[i-1].Time.Format(time.DateTime), i)
		}
		if err := checkBar(b); err != nil {
			return nil, fmt.Errorf("%s: %w", pair, err)
		}
		s.bars[i] = b
		s.index[b.Time.UnixNano()] = i
	}
	for _, f := range fixes {
		f.Date = model.DateOf(f.Date)
		if f.Valid && !f.Price.IsPositive() {
			f.Valid = false
		}
		s.fixes[f.Date.UnixNano()] = f
	}
	s.daily = make([]model.Bar, 0, len(daily))
	for _, b := range daily {
		if err := checkBar(b); err != nil {
			return nil, fmt.Errorf("%s daily: %w", pair, err)
		}
		b.Time = model.DateOf(b.Time)
		s.daily = append(s.daily, b)
	}
	sort.SliceStable(s.daily, func(i, j int) bool { return s.daily[i].Time.Before(s.daily[j].Time) })
	return s, nil
}

func checkBar(b model.Bar) error {
	for _, f := range model.Fields {
		if !b.Price(f).IsPositive() {
			return fmt.Errorf("%w: %s %s=%s", ErrInvalidPrice, b.Time.Format(time.DateTime), f, b.Price(f))
		}
	}
	return nil
}

// Pair returns the currency pair name.
func (s *Series) Pair() string { return s.pair }

// Len returns the number of minute bars.
func (s *Series) Len() int { return len(s.bars) }

// Bar returns the minute bar stamped exactly t.
func (s *Series) Bar(t time.Time) (model.Bar, bool) {
	i, ok := s.index[t.UnixNano()]
	if !ok {
		return model.Bar{}, false
	}
	return s.bars[i], true
}

// At returns the close observed at exactly t.
func (s *Series) At(t time.Time) (model.PriceTime, bool) {
	b, ok := s.Bar(t)
	if !ok {
		return model.PriceTime{}, false
	}
	return model.PriceTime{Price: b.Close, Time: b.Time}, true
}

// Between returns the closes of every date whose time of day lies inside w, in
// chronological order. Each call returns a fresh slice.
func (s *Series) Between(w model.DayWindow) []model.PriceTime {
	var out []model.PriceTime
	for _, b := range s.bars {
		if w.Contains(b.Time) {
			out = append(out, model.PriceTime{Price: b.Close, Time: b.Time})
		}
	}
	return out
}

// BarsBetween is Between returning whole bars.
func (s *Series) BarsBetween(w model.DayWindow) []model.Bar {
	var out []model.Bar
	for _, b := range s.bars {
		if w.Contains(b.Time) {
			out = append(out, b)
		}
	}
	return out
}

// FixAt returns the fixing rate of date. A date that is absent or holds no
// finite value reports false.
func (s *Series) FixAt(date time.Time) (decimal.Decimal, bool) {
	f, ok := s.fixes[model.DateOf(date).UnixNano()]
	if !ok || !f.Valid {
		return decimal.Decimal{}, false
	}
	return f.Price, true
}

// Fixes returns the valid fixing rates inside r, oldest first.
func (s *Series) Fixes(r model.DateRange) []model.Fix {
	var out []model.Fix
	for _, f := range s.fixes {
		if f.Valid && r.Contains(f.Date) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Daily returns a copy of the daily bars, oldest first.
func (s *Series) Daily() []model.Bar {
	return slices.Clone(s.daily)
}

// Dates returns the distinct calendar dates covered by the minute series.
func (s *Series) Dates() []time.Time {
	var out []time.Time
	for _, b := range s.bars {
		d := model.DateOf(b.Time)
		if len(out) == 0 || !out[len(out)-1].Equal(d) {
			out = append(out, d)
		}
	}
	return out
}
