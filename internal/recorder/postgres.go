package recorder

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"VegeNavi/internal/model"
)

// PostgresRecorder persists run history to PostgreSQL.
type PostgresRecorder struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRecorder connects, pings and creates the tables if needed.
func NewPostgresRecorder(dsn string, logger *zap.Logger) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("postgres recorder opened")
	return r, nil
}

func (r *PostgresRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              BIGSERIAL PRIMARY KEY,
			run_id          UUID NOT NULL UNIQUE,
			started_at      TIMESTAMPTZ NOT NULL,
			duration_ms     BIGINT,
			status_code     INTEGER,
			message         TEXT,
			historical_rows INTEGER,
			recent_rows     INTEGER,
			trend_items     INTEGER,
			rate_items      INTEGER,
			latest_period   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS rate_snapshots (
			id          BIGSERIAL PRIMARY KEY,
			run_id      UUID NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			period      TEXT,
			item        TEXT NOT NULL,
			rate_key    TEXT NOT NULL,
			ratio       DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rates_item ON rate_snapshots(item, recorded_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *PostgresRecorder) RecordRun(evt *RunEvent) error {
	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, started_at, duration_ms, status_code, message,
		 historical_rows, recent_rows, trend_items, rate_items, latest_period)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		evt.RunID, evt.StartedAt, evt.Duration.Milliseconds(), evt.StatusCode, evt.Message,
		evt.HistoricalRows, evt.RecentRows, evt.TrendItems, evt.RateItems, evt.LatestPeriod,
	)
	return err
}

func (r *PostgresRecorder) RecordRates(runID, period string, rates model.Rates) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO rate_snapshots
		(run_id, recorded_at, period, item, rate_key, ratio)
		VALUES ($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, row := range sortedRates(rates) {
		if _, err := stmt.Exec(runID, now, period, row.item, row.key, row.ratio); err != nil {
			return fmt.Errorf("insert %s/%s: %w", row.item, row.key, err)
		}
	}
	return tx.Commit()
}

// CountRuns returns the number of recorded runs.
func (r *PostgresRecorder) CountRuns() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

func (r *PostgresRecorder) Close() error {
	r.logger.Info("closing postgres recorder")
	return r.db.Close()
}

type rateRow struct {
	item  string
	key   string
	ratio float64
}

// sortedRates flattens rates in a stable order.
func sortedRates(rates model.Rates) []rateRow {
	rows := make([]rateRow, 0, len(rates)*2)
	for item, byKey := range rates {
		for key, ratio := range byKey {
			rows = append(rows, rateRow{item: item, key: key, ratio: ratio})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].item != rows[j].item {
			return rows[i].item < rows[j].item
		}
		return rows[i].key < rows[j].key
	})
	return rows
}
