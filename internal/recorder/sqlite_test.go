package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pip.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func extremum(date time.Time, up, down string) model.DailyExtremum {
	at := func(h, m int) time.Time { return date.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	bench := model.PriceTime{Price: decimal.RequireFromString("1.3"), Time: at(10, 30)}
	return model.DailyExtremum{
		Date:        date,
		Benchmark:   bench,
		WindowStart: bench,
		MaxPipUp:    decimal.RequireFromString(up),
		MaxUpAt:     model.PriceTime{Price: decimal.RequireFromString("1.305"), Time: at(10, 50)},
		MaxPipDown:  decimal.RequireFromString(down),
		MaxDownAt:   model.PriceTime{Price: decimal.RequireFromString("1.297"), Time: at(10, 40)},
	}
}

func TestRecordExtremaUpserts(t *testing.T) {
	r := openTemp(t)
	day := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordExtrema("GBPUSD", "10:30:00", []model.DailyExtremum{
		extremum(day, "50", "-30"),
		extremum(day.AddDate(0, 0, 1), "10", "0"),
	}))
	// A re-run replaces the row for the same key.
	require.NoError(t, r.RecordExtrema("GBPUSD", "10:30:00", []model.DailyExtremum{
		extremum(day, "60", "-30"),
	}))

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM daily_extrema`).Scan(&n))
	assert.Equal(t, 2, n)

	var (
		up     float64
		upTime string
	)
	require.NoError(t, r.db.QueryRow(
		`SELECT max_pip_up, time_at_max_pip_up FROM daily_extrema WHERE pair=? AND benchmark=? AND date=?`,
		"GBPUSD", "10:30:00", "2018-03-01").Scan(&up, &upTime))
	assert.Equal(t, 60.0, up)
	assert.Equal(t, "10:50:00", upTime)
}

func TestRecordSkipsAndRuns(t *testing.T) {
	r := openTemp(t)
	day := time.Date(2018, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordSkips("GBPUSD", "PDFX", []calculator.Skip{
		{Date: day, Reason: errors.New("no valid fix")},
	}))
	require.NoError(t, r.RecordRun(&RunEvent{
		RunID: "dataout__20240101_120000", Pair: "GBPUSD", StartedAt: time.Now(),
		Duration: 1500 * time.Millisecond, Bars: 10, Days: 2, Skipped: 1, Status: "OK",
	}))

	var reason string
	require.NoError(t, r.db.QueryRow(`SELECT reason FROM skipped_days WHERE date=?`, "2018-03-05").Scan(&reason))
	assert.Equal(t, "no valid fix", reason)

	var (
		status string
		ms     int64
	)
	require.NoError(t, r.db.QueryRow(`SELECT status, duration_ms FROM runs WHERE pair=?`, "GBPUSD").Scan(&status, &ms))
	assert.Equal(t, "OK", status)
	assert.Equal(t, int64(1500), ms)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pip.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunEvent{Pair: "EURUSD", StartedAt: time.Now(), Status: "FAILED", Error: "boom"}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunEvent{}))
	assert.NoError(t, r.RecordExtrema("GBPUSD", "PDFX", nil))
	assert.NoError(t, r.RecordSkips("GBPUSD", "PDFX", nil))
	assert.NoError(t, r.Close())
}
