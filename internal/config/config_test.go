package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PipSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
setup:
  currency_pairs: [GBPUSD]
  benchmark_times: ["10:30", "10:45", "10:30"]
  time_range: {start_time: "10:30", end_time: "11:02"}
  date_range: {start_date: "2018/01/02", end_date: "2018/12/31"}
data_adjustments:
  daylight_saving_mode:
    enabled: true
    hour_ahead_periods: [{start_date: "2018/03/12", end_date: "2018/03/23"}]
    hour_behind_periods: [{start_date: "2018/10/29", end_date: "2018/11/02"}]
metrics:
  minutely_data:
    sections:
      - {time: "10:30", metric: [Close]}
      - {start_time: "10:58", end_time: "11:00", metric: [Open, Close]}
  period_avg_data:
    sections:
      - {start_time: "10:30", end_time: "11:00"}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "max_pip_mvmts", cfg.Output.SheetName)
	assert.Equal(t, 20.0, cfg.Output.ColumnWidth)
	assert.Equal(t, "data/dataout", cfg.Output.Dir)
	assert.Equal(t, filepath.Join("data/datasrc", "GBPUSD_Candlestick_1_m_BID.csv"),
		cfg.SourcePath(cfg.Sources.MinuteFile, "GBPUSD"))
	assert.Equal(t, "", cfg.SourcePath(cfg.Sources.DailyFile, "GBPUSD"))

	specs, err := cfg.Benchmarks()
	require.NoError(t, err)
	labels := make([]string, len(specs))
	for i, s := range specs {
		labels[i] = s.Label()
	}
	assert.Equal(t, []string{"10:30:00", "10:45:00", "PDFX"}, labels)

	w, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, "10:30:00_11:02:00", w.Label())

	r, err := cfg.DateRange()
	require.NoError(t, err)
	assert.True(t, r.Start.Equal(time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)))

	shifts, err := cfg.DSTShifts()
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, -time.Hour, shifts[0].Offset)
	assert.Equal(t, time.Hour, shifts[1].Offset)

	mins, err := cfg.MinuteSections()
	require.NoError(t, err)
	require.Len(t, mins, 2)
	assert.Len(t, mins[1].Columns(), 6)
	assert.Equal(t, []model.Field{model.FieldOpen, model.FieldClose}, mins[1].Fields)

	avgs, err := cfg.AverageSections()
	require.NoError(t, err)
	assert.Equal(t, "10:30:00_11:00:00", avgs[0].Label())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PIPSENTINEL_PAIRS", "eurusd, usdjpy")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("CRON_SCHEDULE", "0 30 18 * * 1-5")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"EURUSD", "USDJPY"}, cfg.Setup.CurrencyPairs)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadTelegramFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("HTTPS_PROXY", "http://proxy:8080")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "http://proxy:8080", cfg.Proxy)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLITE_PATH=from-dotenv.db\n"), 0o644))
	t.Setenv("SQLITE_PATH", "")
	os.Unsetenv("SQLITE_PATH")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.SQLitePath)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "10:30", cfg.Setup.TimeRange.StartTime)
	assert.Error(t, cfg.Validate(), "pairs and date range are still required")
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no pairs", func(c *Config) { c.Setup.CurrencyPairs = nil }},
		{"bad pair", func(c *Config) { c.Setup.CurrencyPairs = []string{"GBP"} }},
		{"reversed window", func(c *Config) { c.Setup.TimeRange.StartTime = "11:30" }},
		{"bad time", func(c *Config) { c.Setup.BenchmarkTimes = []string{"25:00"} }},
		{"benchmark after window", func(c *Config) { c.Setup.BenchmarkTimes = []string{"11:30"} }},
		{"benchmark at window end", func(c *Config) { c.Setup.BenchmarkTimes = []string{"11:02"} }},
		{"reversed date range", func(c *Config) { c.Setup.DateRange.EndDate = "2017/12/31" }},
		{"missing date range", func(c *Config) { c.Setup.DateRange = Period{} }},
		{"bad field", func(c *Config) { c.Metrics.MinutelyData.Sections[0].Metric = []string{"Mid"} }},
		{"reversed avg section", func(c *Config) { c.Metrics.PeriodAvgData.Sections[0].EndTime = "10:00" }},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day" }},
		{"telegram token only", func(c *Config) { c.Telegram.BotToken = "token" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg, err := Load(writeConfig(t, sample))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
