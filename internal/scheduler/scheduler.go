package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"PipSentinel/internal/collector"
	"PipSentinel/internal/exporter"
	"PipSentinel/internal/metrics"
	"PipSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// PairResult is the outcome of one pair within a run.
type PairResult struct {
	Pair     string        `json:"pair"`
	Status   string        `json:"status"`
	Output   string        `json:"output,omitempty"`
	Bars     int           `json:"bars"`
	Days     int           `json:"days"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// RunResult summarises one batch run over all configured pairs.
type RunResult struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Folder     string       `json:"folder"`
	Pairs      []PairResult `json:"pairs"`
}

// Failed reports whether any pair failed.
func (r *RunResult) Failed() bool {
	for _, p := range r.Pairs {
		if p.Status != StatusOK {
			return true
		}
	}
	return false
}

// Scheduler runs the batch once or on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Writer    *exporter.WorkbookWriter
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Pairs     []string
	OutputDir string
	Ctx       context.Context
	Now       func() time.Time

	// OnFinish, when set, receives every completed run.
	OnFinish func(ctx context.Context, res *RunResult)

	runMu sync.Mutex // one batch at a time
	mu    sync.Mutex
	last  *RunResult
}

// NewScheduler creates a new Scheduler. Overlapping cron runs are skipped.
func NewScheduler(ctx context.Context, col *collector.Collector, w *exporter.WorkbookWriter,
	rec recorder.Recorder, m *metrics.Metrics, pairs []string, outputDir string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Collector: col,
		Writer:    w,
		Recorder:  rec,
		Metrics:   m,
		Pairs:     pairs,
		OutputDir: outputDir,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// Register schedules a batch run on spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	log.Printf("[INFO] batch scheduled: %s", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a batch with the scheduler's context (cron / RUN_ON_START).
func (s *Scheduler) RunNow() {
	if _, err := s.RunOnce(s.Ctx); err != nil {
		log.Printf("[ERROR] batch run: %v", err)
	}
}

// LastRun returns the most recent completed run, or nil.
func (s *Scheduler) LastRun() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunOnce analyses every pair into one shared run folder. A failing pair is
// logged and recorded; the others still run. The returned error joins the
// per-pair failures.
func (s *Scheduler) RunOnce(ctx context.Context) (*RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := s.Now()
	res := &RunResult{StartedAt: started, Folder: exporter.RunFolder(s.OutputDir, started)}
	log.Printf("[INFO] running batch over %d pairs into %s", len(s.Pairs), res.Folder)

	var errs []error
	for _, pair := range s.Pairs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		pr := s.runPair(ctx, res.Folder, pair)
		res.Pairs = append(res.Pairs, pr)
		if pr.Status != StatusOK {
			errs = append(errs, fmt.Errorf("%s: %s", pair, pr.Error))
		}
	}

	res.FinishedAt = s.Now()
	if s.Metrics != nil {
		s.Metrics.ObserveRun(res.FinishedAt.Sub(started))
	}
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	log.Printf("[INFO] batch finished in %s, %d failed", res.FinishedAt.Sub(started).Round(time.Millisecond), len(errs))
	if s.OnFinish != nil {
		s.OnFinish(ctx, res)
	}
	return res, errors.Join(errs...)
}

func (s *Scheduler) runPair(ctx context.Context, folder, pair string) PairResult {
	started := time.Now()
	pr := PairResult{Pair: pair, Status: StatusOK}

	tbl, sum, err := s.Collector.Collect(ctx, pair)
	if err == nil {
		pr.Bars, pr.Days, pr.Skipped = sum.Bars, sum.Days, sum.Skipped()
		pr.Output, err = s.Writer.Write(folder, pair, tbl)
	}
	pr.Duration = time.Since(started)
	if err != nil {
		pr.Status, pr.Error = StatusFailed, err.Error()
		log.Printf("[ERROR] %s: %v", pair, err)
	} else {
		log.Printf("[INFO] %s: %d days, %d skipped, written to %s", pair, pr.Days, pr.Skipped, pr.Output)
		s.record(pair, sum)
	}

	if s.Metrics != nil {
		s.Metrics.RunFinished(pr.Status)
	}
	if err := s.Recorder.RecordRun(&recorder.RunEvent{
		RunID:     filepath.Base(folder),
		Pair:      pair,
		StartedAt: started,
		Duration:  pr.Duration,
		Bars:      pr.Bars,
		Days:      pr.Days,
		Skipped:   pr.Skipped,
		Output:    pr.Output,
		Status:    pr.Status,
		Error:     pr.Error,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	return pr
}

func (s *Scheduler) record(pair string, sum *collector.Summary) {
	for _, r := range sum.Scans {
		label := r.Benchmark.Label()
		if err := s.Recorder.RecordExtrema(pair, label, r.Sorted()); err != nil {
			log.Printf("[ERROR] record extrema %s %s: %v", pair, label, err)
		}
		if len(r.Skipped) == 0 {
			continue
		}
		if err := s.Recorder.RecordSkips(pair, label, r.Skipped); err != nil {
			log.Printf("[ERROR] record skips %s %s: %v", pair, label, err)
		}
	}
}
