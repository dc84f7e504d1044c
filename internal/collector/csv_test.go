package collector

import (
	"strings"
	"testing"
	"time"

	"PipSentinel/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMinuteCSVLayouts(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"local time header", `Local time,Open,High,Low,Close,Volume
01.03.2018 10:30:00.000 GMT+0000,1.30000,1.30010,1.29990,1.30005,120.5
01.03.2018 10:31:00.000 GMT+0000,1.30005,1.30020,1.30000,1.30015,98
`},
		{"date time header", `Date,Time,Open,High,Low,Close,Volume
2018.03.01,10:30,1.30000,1.30010,1.29990,1.30005,0
2018.03.01,10:31,1.30005,1.30020,1.30000,1.30015,0
`},
		{"headerless legacy", `2018-03-01,10:30:00,1.30000,1.30010,1.29990,1.30005,7
2018-03-01,10:31:00,1.30005,1.30020,1.30000,1.30015,7
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bars, err := ReadMinuteCSV(strings.NewReader(tc.body))
			require.NoError(t, err)
			require.Len(t, bars, 2)
			assert.True(t, bars[0].Time.Equal(time.Date(2018, 3, 1, 10, 30, 0, 0, time.UTC)))
			assert.Equal(t, "1.30005", bars[0].Close.String())
			assert.Equal(t, "1.3002", bars[1].High.String())
		})
	}
}

func TestReadMinuteCSVRejectsUnorderedRows(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
		line string
	}{
		{"earlier timestamp", `Local time,Open,High,Low,Close
01.03.2018 10:31:00.000,1.2,1.2,1.2,1.2
01.03.2018 10:30:00.000,1.1,1.1,1.1,1.1
`, store.ErrOutOfOrder, "line 3"},
		{"repeated timestamp", `2018-03-01,10:30,1.1,1.1,1.1,1.1
2018-03-01,10:31,1.2,1.2,1.2,1.2
2018-03-01,10:31,1.9,1.9,1.9,1.9
`, store.ErrDuplicateTimestamp, "line 3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMinuteCSV(strings.NewReader(tc.body))
			require.ErrorIs(t, err, tc.want)
			assert.ErrorContains(t, err, tc.line)
		})
	}
}

func TestReadMinuteCSVErrors(t *testing.T) {
	_, err := ReadMinuteCSV(strings.NewReader("garbage,row\n"))
	assert.Error(t, err)

	_, err = ReadMinuteCSV(strings.NewReader("Local time,Open,High,Low,Close\n01.03.2018 10:30:00,1.1,x,1.1,1.1\n"))
	assert.ErrorContains(t, err, "line 2")

	bars, err := ReadMinuteCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestReadFixCSV(t *testing.T) {
	body := `datetime,EUR-USD,GBP-USD
2018-02-27,1.2230,1.3950
2018-02-28,1.2200,NaN
2018-03-01,1.2190,
`
	fixes, err := ReadFixCSV(strings.NewReader(body), "GBPUSD")
	require.NoError(t, err)
	require.Len(t, fixes, 3)
	assert.True(t, fixes[0].Valid)
	assert.Equal(t, "1.395", fixes[0].Price.String())
	assert.False(t, fixes[1].Valid)
	assert.False(t, fixes[2].Valid)
	assert.True(t, fixes[2].Date.Equal(time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ReadFixCSV(strings.NewReader(body), "USDJPY")
	assert.ErrorContains(t, err, "USD-JPY")
}
