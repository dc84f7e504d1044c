package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairObserverCounts(t *testing.T) {
	m := New()
	day := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)

	obs := m.ForPair("GBPUSD")
	obs.DayScanned("10:30:00", day)
	obs.DayScanned("10:30:00", day.AddDate(0, 0, 1))
	obs.DaySkipped("PDFX", day, errors.New("no fix"))
	m.ForPair("EURUSD").DayScanned("10:30:00", day)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.daysScanned.WithLabelValues("GBPUSD", "10:30:00")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.daysScanned.WithLabelValues("EURUSD", "10:30:00")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.daysSkipped.WithLabelValues("GBPUSD", "PDFX")))
}

func TestRunMetrics(t *testing.T) {
	m := New()
	m.RunFinished("OK")
	m.RunFinished("OK")
	m.RunFinished("FAILED")
	m.ObserveRun(250 * time.Millisecond)

	expected := `
# HELP pipsentinel_runs_total Per-pair runs by outcome.
# TYPE pipsentinel_runs_total counter
pipsentinel_runs_total{status="FAILED"} 1
pipsentinel_runs_total{status="OK"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "pipsentinel_runs_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}
