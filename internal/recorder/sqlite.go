package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"PipSentinel/internal/calculator"
	"PipSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history and daily results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			run_id      TEXT NOT NULL,
			pair        TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			bars        INTEGER,
			days        INTEGER,
			skipped     INTEGER,
			output      TEXT,
			status      TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_pair ON runs(pair, started_at)`,

		`CREATE TABLE IF NOT EXISTS daily_extrema (
			pair                  TEXT NOT NULL,
			benchmark             TEXT NOT NULL,
			date                  TEXT NOT NULL,
			benchmark_price       REAL,
			benchmark_time        TEXT,
			max_pip_up            REAL,
			price_at_max_pip_up   REAL,
			time_at_max_pip_up    TEXT,
			max_pip_down          REAL,
			price_at_max_pip_down REAL,
			time_at_max_pip_down  TEXT,
			updated_at            INTEGER NOT NULL,
			PRIMARY KEY (pair, benchmark, date)
		)`,

		`CREATE TABLE IF NOT EXISTS skipped_days (
			pair       TEXT NOT NULL,
			benchmark  TEXT NOT NULL,
			date       TEXT NOT NULL,
			reason     TEXT,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (pair, benchmark, date)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(timestamp, run_id, pair, started_at, duration_ms, bars, days, skipped, output, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Pair, evt.StartedAt.Unix(), evt.Duration.Milliseconds(),
		evt.Bars, evt.Days, evt.Skipped, evt.Output, evt.Status, evt.Error,
	)
	return err
}

// RecordExtrema upserts one row per date, so re-running a range replaces
// earlier results.
func (r *SQLiteRecorder) RecordExtrema(pair, benchmark string, days []model.DailyExtremum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_extrema
		(pair, benchmark, date, benchmark_price, benchmark_time,
		 max_pip_up, price_at_max_pip_up, time_at_max_pip_up,
		 max_pip_down, price_at_max_pip_down, time_at_max_pip_down, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, d := range days {
		if _, err := stmt.Exec(pair, benchmark, d.Date.Format(time.DateOnly),
			d.Benchmark.Price.InexactFloat64(), d.Benchmark.Time.Format(time.DateTime),
			d.MaxPipUp.InexactFloat64(), d.MaxUpAt.Price.InexactFloat64(), d.MaxUpAt.Time.Format(time.TimeOnly),
			d.MaxPipDown.InexactFloat64(), d.MaxDownAt.Price.InexactFloat64(), d.MaxDownAt.Time.Format(time.TimeOnly),
			now,
		); err != nil {
			return fmt.Errorf("insert %s %s: %w", benchmark, d.Date.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordSkips(pair, benchmark string, skips []calculator.Skip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, s := range skips {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO skipped_days
			(pair, benchmark, date, reason, updated_at) VALUES (?,?,?,?,?)`,
			pair, benchmark, s.Date.Format(time.DateOnly), s.Reason.Error(), now,
		); err != nil {
			return fmt.Errorf("insert skip %s: %w", s.Date.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
