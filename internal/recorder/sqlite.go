package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"VegeNavi/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL UNIQUE,
			timestamp       INTEGER NOT NULL,
			duration_ms     INTEGER,
			status_code     INTEGER,
			message         TEXT,
			historical_rows INTEGER,
			recent_rows     INTEGER,
			trend_items     INTEGER,
			rate_items      INTEGER,
			latest_period   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS rate_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			period      TEXT,
			item        TEXT NOT NULL,
			rate_key    TEXT NOT NULL,
			ratio       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rates_item ON rate_snapshots(item, timestamp)`,
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
		(run_id, timestamp, duration_ms, status_code, message,
		 historical_rows, recent_rows, trend_items, rate_items, latest_period)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, evt.StartedAt.Unix(), evt.Duration.Milliseconds(), evt.StatusCode, evt.Message,
		evt.HistoricalRows, evt.RecentRows, evt.TrendItems, evt.RateItems, evt.LatestPeriod,
	)
	return err
}

func (r *SQLiteRecorder) RecordRates(runID, period string, rates model.Rates) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO rate_snapshots
		(run_id, timestamp, period, item, rate_key, ratio)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, row := range sortedRates(rates) {
		if _, err := stmt.Exec(runID, now, period, row.item, row.key, row.ratio); err != nil {
			return fmt.Errorf("insert %s/%s: %w", row.item, row.key, err)
		}
	}
	return tx.Commit()
}

// CountRuns returns the number of recorded runs.
func (r *SQLiteRecorder) CountRuns() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
