package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DateLayout is the date format used throughout the config file.
const DateLayout = "2006/01/02"

// cronParser accepts the six-field specs (with seconds) used by the scheduler.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Period is an inclusive date range as written in the config file.
type Period struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// Section is either a single time or an inclusive time range, with the price
// fields to report for minutely data.
type Section struct {
	Time      string   `yaml:"time"`
	StartTime string   `yaml:"start_time"`
	EndTime   string   `yaml:"end_time"`
	Metric    []string `yaml:"metric"`
}

// Config holds all application configuration.
type Config struct {
	Setup struct {
		CurrencyPairs  []string `yaml:"currency_pairs"`
		BenchmarkTimes []string `yaml:"benchmark_times"`
		PriorDayFix    *bool    `yaml:"prior_day_fix"`
		TimeRange      struct {
			StartTime string `yaml:"start_time"`
			EndTime   string `yaml:"end_time"`
		} `yaml:"time_range"`
		DateRange Period `yaml:"date_range"`
	} `yaml:"setup"`
	Sources struct {
		Dir        string `yaml:"dir"`
		MinuteFile string `yaml:"minute_file"`
		FixFile    string `yaml:"fix_file"`
		DailyFile  string `yaml:"daily_file"`
	} `yaml:"sources"`
	DataAdjustments struct {
		DaylightSaving struct {
			Enabled           bool     `yaml:"enabled"`
			HourAheadPeriods  []Period `yaml:"hour_ahead_periods"`
			HourBehindPeriods []Period `yaml:"hour_behind_periods"`
		} `yaml:"daylight_saving_mode"`
	} `yaml:"data_adjustments"`
	Metrics struct {
		IncludeOHLC  bool `yaml:"include_ohlc"`
		LongShort    bool `yaml:"long_short"`
		MinutelyData struct {
			Sections []Section `yaml:"sections"`
		} `yaml:"minutely_data"`
		PeriodAvgData struct {
			Sections []Section `yaml:"sections"`
		} `yaml:"period_avg_data"`
	} `yaml:"metrics"`
	Output struct {
		Dir         string  `yaml:"dir"`
		SheetName   string  `yaml:"sheet_name"`
		ColumnWidth float64 `yaml:"column_width"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads a .env file if present, then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("PIPSENTINEL_PAIRS"); v != "" {
		cfg.Setup.CurrencyPairs = splitList(v)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Sources.Dir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.Schedule.RunOnStart = v == "true"
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Setup.TimeRange.StartTime == "" {
		cfg.Setup.TimeRange.StartTime = "10:30"
	}
	if cfg.Setup.TimeRange.EndTime == "" {
		cfg.Setup.TimeRange.EndTime = "11:02"
	}
	if len(cfg.Setup.BenchmarkTimes) == 0 {
		cfg.Setup.BenchmarkTimes = []string{"10:30"}
	}
	if cfg.Setup.PriorDayFix == nil {
		on := true
		cfg.Setup.PriorDayFix = &on
	}
	if cfg.Sources.Dir == "" {
		cfg.Sources.Dir = "data/datasrc"
	}
	if cfg.Sources.MinuteFile == "" {
		cfg.Sources.MinuteFile = "{pair}_Candlestick_1_m_BID.csv"
	}
	if cfg.Sources.FixFile == "" {
		cfg.Sources.FixFile = "fix.csv"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "data/dataout"
	}
	if cfg.Output.SheetName == "" {
		cfg.Output.SheetName = "max_pip_mvmts"
	}
	if cfg.Output.ColumnWidth == 0 {
		cfg.Output.ColumnWidth = 20
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well formed.
func (c *Config) Validate() error {
	if len(c.Setup.CurrencyPairs) == 0 {
		return fmt.Errorf("setup.currency_pairs is required")
	}
	for _, p := range c.Setup.CurrencyPairs {
		if len(p) != 6 {
			return fmt.Errorf("setup.currency_pairs: %q is not a six-letter pair", p)
		}
	}
	w, err := c.Window()
	if err != nil {
		return err
	}
	if _, err := c.DateRange(); err != nil {
		return err
	}
	specs, err := c.Benchmarks()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("setup: no benchmarks configured")
	}
	for _, s := range specs {
		if s.Kind == model.FixedTime && s.At >= w.End {
			return fmt.Errorf("setup.benchmark_times: %s is not before the window end %s", s.At, w.End)
		}
	}
	if _, err := c.DSTShifts(); err != nil {
		return err
	}
	if _, err := c.MinuteSections(); err != nil {
		return err
	}
	if _, err := c.AverageSections(); err != nil {
		return err
	}
	if c.Schedule.Cron != "" {
		if _, err := cronParser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	if c.Output.ColumnWidth < 0 {
		return fmt.Errorf("output.column_width must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether run reports are sent to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Window returns the scan window.
func (c *Config) Window() (model.DayWindow, error) {
	return parseWindow("setup.time_range", c.Setup.TimeRange.StartTime, c.Setup.TimeRange.EndTime)
}

// DateRange returns the analysed date range, which also bounds fix lookback.
func (c *Config) DateRange() (model.DateRange, error) {
	return parsePeriod("setup.date_range", c.Setup.DateRange)
}

// Benchmarks returns the fixed-time benchmarks in config order, followed by
// the prior day fix benchmark when enabled.
func (c *Config) Benchmarks() ([]model.BenchmarkSpec, error) {
	var specs []model.BenchmarkSpec
	seen := map[model.TimeOfDay]bool{}
	for _, s := range c.Setup.BenchmarkTimes {
		t, err := model.ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("setup.benchmark_times: %w", err)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		specs = append(specs, model.Fixed(t))
	}
	if c.Setup.PriorDayFix == nil || *c.Setup.PriorDayFix {
		specs = append(specs, model.PriorFix())
	}
	return specs, nil
}

// DSTShifts returns the daylight saving adjustments, or nil when disabled.
// Hour-ahead periods shift bars back an hour, hour-behind periods forward.
func (c *Config) DSTShifts() ([]model.ClockShift, error) {
	dst := c.DataAdjustments.DaylightSaving
	if !dst.Enabled {
		return nil, nil
	}
	var out []model.ClockShift
	for _, p := range dst.HourAheadPeriods {
		r, err := parsePeriod("hour_ahead_periods", p)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ClockShift{Dates: r, Offset: -time.Hour})
	}
	for _, p := range dst.HourBehindPeriods {
		r, err := parsePeriod("hour_behind_periods", p)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ClockShift{Dates: r, Offset: time.Hour})
	}
	return out, nil
}

// MinuteSections returns the minutely_data sections.
func (c *Config) MinuteSections() ([]calculator.MinuteSection, error) {
	var out []calculator.MinuteSection
	for i, s := range c.Metrics.MinutelyData.Sections {
		w, err := s.window(fmt.Sprintf("metrics.minutely_data.sections[%d]", i))
		if err != nil {
			return nil, err
		}
		ms := calculator.MinuteSection{Window: w}
		names := s.Metric
		if len(names) == 0 {
			names = []string{string(model.FieldClose)}
		}
		for _, n := range names {
			f, err := model.ParseField(n)
			if err != nil {
				return nil, fmt.Errorf("metrics.minutely_data.sections[%d]: %w", i, err)
			}
			ms.Fields = append(ms.Fields, f)
		}
		out = append(out, ms)
	}
	return out, nil
}

// AverageSections returns the period_avg_data sections.
func (c *Config) AverageSections() ([]model.DayWindow, error) {
	var out []model.DayWindow
	for i, s := range c.Metrics.PeriodAvgData.Sections {
		w, err := s.window(fmt.Sprintf("metrics.period_avg_data.sections[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (s Section) window(field string) (model.DayWindow, error) {
	if s.Time != "" {
		return parseWindow(field, s.Time, s.Time)
	}
	return parseWindow(field, s.StartTime, s.EndTime)
}

func parseWindow(field, start, end string) (model.DayWindow, error) {
	st, err := model.ParseTimeOfDay(start)
	if err != nil {
		return model.DayWindow{}, fmt.Errorf("%s start: %w", field, err)
	}
	et, err := model.ParseTimeOfDay(end)
	if err != nil {
		return model.DayWindow{}, fmt.Errorf("%s end: %w", field, err)
	}
	w, err := model.NewDayWindow(st, et)
	if err != nil {
		return model.DayWindow{}, fmt.Errorf("%s: %w", field, err)
	}
	return w, nil
}

func parsePeriod(field string, p Period) (model.DateRange, error) {
	if p.StartDate == "" || p.EndDate == "" {
		return model.DateRange{}, fmt.Errorf("%s: start_date and end_date are required", field)
	}
	start, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%s.start_date: %w", field, err)
	}
	end, err := time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%s.end_date: %w", field, err)
	}
	r, err := model.NewDateRange(start, end)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%s: %w", field, err)
	}
	return r, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

// SourcePath expands a "{pair}" file pattern under the sources directory.
func (c *Config) SourcePath(pattern, pair string) string {
	if pattern == "" {
		return ""
	}
	name := strings.ReplaceAll(pattern, "{pair}", pair)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Sources.Dir, name)
}
