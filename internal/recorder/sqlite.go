package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TacticalSentinel/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets dashboards read while the bot writes.
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
		`CREATE TABLE IF NOT EXISTS allocation_runs (
			run_id            TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			trigger_type      TEXT,
			status            TEXT NOT NULL,
			as_of             TEXT,
			rates_rising      INTEGER,
			rate              REAL,
			rate_ma           REAL,
			bond_symbol       TEXT,
			cash_yield        REAL,
			cash_daily_return REAL,
			cash_weight       REAL,
			total_weight      REAL,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON allocation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS allocation_sleeves (
			run_id            TEXT NOT NULL,
			sleeve            TEXT NOT NULL,
			symbol            TEXT,
			price             REAL,
			prev_change       REAL,
			score             INTEGER,
			max_score         INTEGER,
			scalar            REAL,
			base_weight       REAL,
			invested          REAL,
			cash_contribution REAL,
			PRIMARY KEY (run_id, sleeve)
		)`,

		`CREATE TABLE IF NOT EXISTS allocation_weights (
			run_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			weight REAL,
			PRIMARY KEY (run_id, symbol)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores undefined values as NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: model.Defined(v)}
}

func (r *SQLiteRecorder) RecordAllocation(ctx context.Context, rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := rec.Allocation
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rising := 0
	if a.Regime.Rising {
		rising = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO allocation_runs
		(run_id, timestamp, trigger_type, status, as_of, rates_rising, rate, rate_ma, bond_symbol,
		 cash_yield, cash_daily_return, cash_weight, total_weight)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, time.Now().Unix(), string(rec.Trigger), "OK", a.AsOf.Format("2006-01-02"),
		rising, nullable(a.Regime.Rate), nullable(a.Regime.RateMA), a.Regime.BondSymbol,
		nullable(a.CashYield), nullable(a.CashDailyReturn), a.CashWeight, a.Total,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range a.Sleeves {
		if _, err := tx.ExecContext(ctx, `INSERT INTO allocation_sleeves
			(run_id, sleeve, symbol, price, prev_change, score, max_score, scalar, base_weight, invested, cash_contribution)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rec.RunID, string(s.Sleeve), s.Symbol, nullable(s.Price), nullable(s.PrevChange),
			s.Score, s.MaxScore, s.Scalar, s.BaseWeight, s.Invested, s.CashContribution,
		); err != nil {
			return fmt.Errorf("insert sleeve %s: %w", s.Sleeve, err)
		}
	}

	for _, w := range a.Weights {
		if _, err := tx.ExecContext(ctx, `INSERT INTO allocation_weights (run_id, symbol, weight) VALUES (?,?,?)`,
			rec.RunID, w.Symbol, w.Weight,
		); err != nil {
			return fmt.Errorf("insert weight %s: %w", w.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(ctx context.Context, runID string, trigger model.TriggerType, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO allocation_runs
		(run_id, timestamp, trigger_type, status, error) VALUES (?,?,?,?,?)`,
		runID, time.Now().Unix(), string(trigger), "FAILED", runErr.Error(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
