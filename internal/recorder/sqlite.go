package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists plan runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			source          TEXT,
			starting_price  REAL,
			variant         TEXT,
			row_count       INTEGER,
			break_even      REAL,
			floating_pnl    REAL,
			cumulative_lots REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_ts ON plan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS plan_rows (
			run_id          INTEGER NOT NULL REFERENCES plan_runs(id),
			seq             INTEGER NOT NULL,
			tranche         TEXT,
			price           REAL,
			lots            REAL,
			cumulative_lots REAL,
			break_even      REAL,
			floating_pnl    REAL,
			PRIMARY KEY (run_id, seq)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordPlan stores the run header and every row in one transaction.
func (r *SQLiteRecorder) RecordPlan(run *PlanRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := run.Plan
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO plan_runs
		(timestamp, source, starting_price, variant, row_count, break_even, floating_pnl, cumulative_lots)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Source, p.StartingPrice, p.Variant, len(p.Rows),
		p.Summary.BreakEven, p.Summary.FloatingPnL, p.Summary.CumulativeLots,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO plan_rows
		(run_id, seq, tranche, price, lots, cumulative_lots, break_even, floating_pnl)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, row := range p.Rows {
		if _, err := stmt.Exec(runID, i, string(row.Tranche), float64(row.Price),
			row.Lots, row.CumulativeLots, row.BreakEven, row.FloatingPnL); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit run headers, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, source, starting_price, variant, row_count,
		break_even, floating_pnl, cumulative_lots
		FROM plan_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Source, &rec.StartingPrice, &rec.Variant,
			&rec.RowCount, &rec.BreakEven, &rec.FloatingPnL, &rec.CumulativeLots); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
