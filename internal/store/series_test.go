package store

import (
	"testing"
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

func bar(t time.Time, close string) model.Bar {
	p := decimal.RequireFromString(close)
	return model.Bar{Time: t, Open: p, High: p, Low: p, Close: p}
}

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestNewSeriesRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		bars []model.Bar
		want error
	}{
		{"empty", nil, ErrEmptySeries},
		{"duplicate timestamp", []model.Bar{bar(at(10, 30), "1.3"), bar(at(10, 30), "1.3")}, ErrDuplicateTimestamp},
		{"descending", []model.Bar{bar(at(10, 31), "1.3"), bar(at(10, 30), "1.3")}, ErrOutOfOrder},
		{"zero price", []model.Bar{bar(at(10, 30), "0")}, ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSeries("GBPUSD", tc.bars, nil, nil)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSeriesLookups(t *testing.T) {
	next := day.AddDate(0, 0, 1)
	bars := []model.Bar{
		bar(at(10, 29), "1.2990"),
		bar(at(10, 30), "1.3000"),
		bar(at(11, 0), "1.3010"),
		bar(at(11, 3), "1.3020"),
		bar(next.Add(10*time.Hour+30*time.Minute), "1.3100"),
	}
	fixes := []model.Fix{
		{Date: day.AddDate(0, 0, -1), Price: decimal.RequireFromString("1.2950"), Valid: true},
		{Date: day, Valid: false},
	}
	s, err := NewSeries("GBPUSD", bars, fixes, nil)
	require.NoError(t, err)
	assert.Equal(t, "GBPUSD", s.Pair())
	assert.Equal(t, 5, s.Len())

	p, ok := s.At(at(10, 30))
	require.True(t, ok)
	assert.Equal(t, "1.3", p.Price.String())
	_, ok = s.At(at(10, 31))
	assert.False(t, ok)

	w, err := model.NewDayWindow(model.NewTimeOfDay(10, 30, 0), model.NewTimeOfDay(11, 2, 0))
	require.NoError(t, err)
	obs := s.Between(w)
	require.Len(t, obs, 3)
	assert.True(t, obs[0].Time.Equal(at(10, 30)))
	assert.True(t, obs[2].Time.Equal(next.Add(10*time.Hour+30*time.Minute)))
	assert.Len(t, s.BarsBetween(w), 3)

	// restartable: a second call yields the same sequence
	assert.Equal(t, obs, s.Between(w))

	fix, ok := s.FixAt(day.AddDate(0, 0, -1).Add(5 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, "1.295", fix.String())
	_, ok = s.FixAt(day)
	assert.False(t, ok, "NaN fix must read as missing")
	_, ok = s.FixAt(day.AddDate(0, 0, -7))
	assert.False(t, ok)

	assert.Equal(t, []time.Time{day, next}, s.Dates())
}

func TestSeriesFixesInRange(t *testing.T) {
	fixes := []model.Fix{
		{Date: day.AddDate(0, 0, 2), Price: decimal.RequireFromString("1.31"), Valid: true},
		{Date: day, Price: decimal.RequireFromString("1.30"), Valid: true},
		{Date: day.AddDate(0, 0, 1), Valid: false},
		{Date: day.AddDate(0, 0, 9), Price: decimal.RequireFromString("1.32"), Valid: true},
	}
	s, err := NewSeries("GBPUSD", []model.Bar{bar(at(10, 30), "1.3")}, fixes, nil)
	require.NoError(t, err)

	r, err := model.NewDateRange(day, day.AddDate(0, 0, 3))
	require.NoError(t, err)
	got := s.Fixes(r)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day))
	assert.True(t, got[1].Date.Equal(day.AddDate(0, 0, 2)))
}

func TestSeriesDailySorted(t *testing.T) {
	daily := []model.Bar{bar(day.AddDate(0, 0, 1), "1.31"), bar(day, "1.30")}
	s, err := NewSeries("GBPUSD", []model.Bar{bar(at(10, 30), "1.3")}, nil, daily)
	require.NoError(t, err)
	got := s.Daily()
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.Equal(day))

	got[0].Close = decimal.Zero
	assert.Equal(t, "1.3", s.Daily()[0].Close.String(), "Daily must return a copy")
}
