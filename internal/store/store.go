// Package store persists backtest runs, closed trades, and equity
// snapshots to SQLite. It owns schema creation and additive migration;
// the domain packages never see a *sql.DB directly.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"backtestlab/internal/aggregate"
	"backtestlab/internal/simulate"
)

const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// Run is one persisted backtest job.
type Run struct {
	ID            string
	UniverseID    string
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	Message       string
	Result        *aggregate.BacktestResult
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   time.Time
}

// Store manages the backtest_runs/backtest_trades/backtest_snapshots/
// backtest_run_logs tables backing one SQLite file.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (or reuses) the SQLite file at path and ensures the schema
// exists, following the single-writer-connection convention used
// throughout this codebase for embedded SQLite: one connection, WAL mode,
// a generous busy timeout so concurrent readers never see SQLITE_BUSY.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id TEXT PRIMARY KEY,
			universe_id TEXT NOT NULL,
			start_date INTEGER NOT NULL,
			end_date INTEGER NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			result_json TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			completed_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			entry_time INTEGER NOT NULL,
			entry_price REAL NOT NULL,
			exit_time INTEGER NOT NULL,
			exit_price REAL NOT NULL,
			size REAL NOT NULL,
			pnl REAL NOT NULL,
			pnl_percent REAL NOT NULL,
			exit_reason TEXT NOT NULL,
			FOREIGN KEY(run_id) REFERENCES backtest_runs(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			equity REAL NOT NULL,
			FOREIGN KEY(run_id) REFERENCES backtest_runs(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_run_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			ts INTEGER NOT NULL,
			FOREIGN KEY(run_id) REFERENCES backtest_runs(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON backtest_snapshots(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_run_logs_run ON backtest_run_logs(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return addColumnIfMissing(db, "backtest_runs", "message", "TEXT")
}

func addColumnIfMissing(db *sql.DB, table, column, typ string) error {
	exists, err := columnExists(db, table, column)
	if err != nil || exists {
		return err
	}
	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
	return err
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(1) FROM pragma_table_info('%s') WHERE name='%s'", table, column)
	var cnt int
	if err := db.QueryRow(query).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// InsertRun records a newly submitted job in the RUNNING state.
func (s *Store) InsertRun(ctx context.Context, id, universeID string, start, end time.Time) error {
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backtest_runs (id, universe_id, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, universeID, start.Unix(), end.Unix(), RunStatusRunning, now, now)
	return err
}

// CompleteRun stores the terminal aggregate result for a run.
func (s *Store) CompleteRun(ctx context.Context, id string, result aggregate.BacktestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	status := RunStatusDone
	if !result.Success {
		status = RunStatusFailed
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE backtest_runs SET status=?, message=?, result_json=?, updated_at=?, completed_at=?
		WHERE id=?`,
		status, result.Message, string(payload), now, now, id)
	if err != nil {
		return err
	}
	if err := s.insertTrades(ctx, id, result.SampleTrades); err != nil {
		return err
	}
	return s.InsertSnapshots(ctx, id, result.EquityCurve)
}

// FailRun records a synchronous or terminal failure for a run.
func (s *Store) FailRun(ctx context.Context, id, message string) error {
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		UPDATE backtest_runs SET status=?, message=?, updated_at=?, completed_at=?
		WHERE id=?`, RunStatusFailed, message, now, now, id)
	return err
}

func (s *Store) insertTrades(ctx context.Context, runID string, trades []simulate.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO backtest_trades
			(run_id, symbol, entry_time, entry_price, exit_time, exit_price, size, pnl, pnl_percent, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, runID, t.Symbol, t.EntryTime, t.EntryPrice,
			t.ExitTime, t.ExitPrice, t.Size, t.PnL, t.PnLPercent, string(t.ExitReason)); err != nil {
			return err
		}
	}
	return nil
}

// InsertSnapshots persists a run's portfolio equity curve.
func (s *Store) InsertSnapshots(ctx context.Context, runID string, curve []simulate.EquityPoint) error {
	if len(curve) == 0 {
		return nil
	}
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO backtest_snapshots (run_id, ts, equity) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range curve {
		if _, err := stmt.ExecContext(ctx, runID, p.Timestamp, p.Equity); err != nil {
			return err
		}
	}
	return nil
}

// LogLine persists one structured log line against a run, mirroring the
// trade/snapshot tables. Callers treat failures as best-effort; a lost
// log line never aborts a run.
func (s *Store) LogLine(ctx context.Context, runID, level, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backtest_run_logs (run_id, level, message, ts) VALUES (?, ?, ?, ?)`,
		runID, level, message, time.Now().UnixMilli())
	return err
}

// RunLog is one persisted log line for a run, returned oldest first.
type RunLog struct {
	Level     string
	Message   string
	Timestamp int64
}

// LoadRunLogs returns every log line recorded for a run, oldest first.
func (s *Store) LoadRunLogs(ctx context.Context, runID string) ([]RunLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, message, ts FROM backtest_run_logs WHERE run_id=? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunLog
	for rows.Next() {
		var l RunLog
		if err := rows.Scan(&l.Level, &l.Message, &l.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LoadRun fetches one run's status and, if complete, its terminal result.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var resultJSON sql.NullString
	var startUnix, endUnix, createdMs, updatedMs int64
	var completedMs sql.NullInt64
	var message sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT id, universe_id, start_date, end_date, status, message, result_json,
		       created_at, updated_at, completed_at
		FROM backtest_runs WHERE id=?`, id)
	if err := row.Scan(&run.ID, &run.UniverseID, &startUnix, &endUnix, &run.Status, &message,
		&resultJSON, &createdMs, &updatedMs, &completedMs); err != nil {
		return Run{}, err
	}
	run.StartDate = time.Unix(startUnix, 0).UTC()
	run.EndDate = time.Unix(endUnix, 0).UTC()
	run.CreatedAt = time.UnixMilli(createdMs).UTC()
	run.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	if message.Valid {
		run.Message = message.String
	}
	if completedMs.Valid {
		run.CompletedAt = time.UnixMilli(completedMs.Int64).UTC()
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result aggregate.BacktestResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return Run{}, err
		}
		run.Result = &result
	}
	return run, nil
}
