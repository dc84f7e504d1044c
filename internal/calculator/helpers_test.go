package calculator

import (
	"sync"
	"testing"
	"time"

	"PipSentinel/internal/model"
	"PipSentinel/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

func hm(date time.Time, h, m int) time.Time {
	return model.NewTimeOfDay(h, m, 0).On(date)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func flatBar(t time.Time, price string) model.Bar {
	p := dec(price)
	return model.Bar{Time: t, Open: p, High: p, Low: p, Close: p}
}

func defaultWindow(t *testing.T) model.DayWindow {
	t.Helper()
	w, err := model.NewDayWindow(model.NewTimeOfDay(10, 30, 0), model.NewTimeOfDay(11, 2, 0))
	require.NoError(t, err)
	return w
}

func dateRange(t *testing.T, start, end time.Time) model.DateRange {
	t.Helper()
	r, err := model.NewDateRange(start, end)
	require.NoError(t, err)
	return r
}

// scenarioBars is the one-day series used by the end-to-end scenarios.
func scenarioBars(date time.Time) []model.Bar {
	return []model.Bar{
		flatBar(hm(date, 10, 30), "1.3000"),
		flatBar(hm(date, 10, 45), "1.3010"),
		flatBar(hm(date, 10, 50), "1.3050"),
		flatBar(hm(date, 11, 0), "1.2990"),
	}
}

func newSeries(t *testing.T, bars []model.Bar, fixes []model.Fix) *store.Series {
	t.Helper()
	s, err := store.NewSeries("GBPUSD", bars, fixes, nil)
	require.NoError(t, err)
	return s
}

type recordingObserver struct {
	mu      sync.Mutex
	scanned map[string]int
	skipped map[string][]time.Time
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{scanned: map[string]int{}, skipped: map[string][]time.Time{}}
}

func (o *recordingObserver) DayScanned(b string, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scanned[b]++
}

func (o *recordingObserver) DaySkipped(b string, d time.Time, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped[b] = append(o.skipped[b], d)
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
