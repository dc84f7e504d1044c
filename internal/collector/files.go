package collector

import (
	"context"
	"fmt"
	"os"
	"strings"

	"PipSentinel/internal/model"
)

// FileSource reads pair data from local files. Patterns may contain "{pair}".
type FileSource struct {
	MinutePattern string
	FixPath       string
	DailyPattern  string
}

func (s *FileSource) Name() string { return "files" }

func expand(pattern, pair string) string {
	return strings.ReplaceAll(pattern, "{pair}", pair)
}

func (s *FileSource) MinuteBars(_ context.Context, pair string) ([]model.Bar, error) {
	path := expand(s.MinutePattern, pair)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open minute data: %w", err)
	}
	defer f.Close()
	bars, err := ReadMinuteCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// Fixes returns no fixes when no fix file is configured; prior-day-fix
// benchmarks then skip every date.
func (s *FileSource) Fixes(_ context.Context, pair string) ([]model.Fix, error) {
	if s.FixPath == "" {
		return nil, nil
	}
	f, err := os.Open(s.FixPath)
	if err != nil {
		return nil, fmt.Errorf("open fix data: %w", err)
	}
	defer f.Close()
	fixes, err := ReadFixCSV(f, pair)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.FixPath, err)
	}
	return fixes, nil
}

func (s *FileSource) DailyBars(_ context.Context, pair string) ([]model.Bar, error) {
	if s.DailyPattern == "" {
		return nil, nil
	}
	return ReadDailyWorkbook(expand(s.DailyPattern, pair))
}
