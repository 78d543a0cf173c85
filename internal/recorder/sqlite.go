package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockDashboard/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API readers do not block the pass writer.
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
		`CREATE TABLE IF NOT EXISTS passes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			seq          INTEGER NOT NULL,
			timestamp    INTEGER NOT NULL,
			started_at   INTEGER NOT NULL,
			status       TEXT NOT NULL,
			currency     TEXT,
			symbols      INTEGER,
			succeeded    INTEGER,
			failed       INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passes_ts ON passes(timestamp)`,

		`CREATE TABLE IF NOT EXISTS snapshot_entries (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			pass_id INTEGER NOT NULL REFERENCES passes(id),
			symbol  TEXT NOT NULL,
			close   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_pass ON snapshot_entries(pass_id)`,

		`CREATE TABLE IF NOT EXISTS symbol_errors (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			pass_id INTEGER NOT NULL REFERENCES passes(id),
			symbol  TEXT NOT NULL,
			kind    TEXT,
			message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_pass ON symbol_errors(pass_id)`,

		`CREATE TABLE IF NOT EXISTS valuations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			pass_id        INTEGER NOT NULL REFERENCES passes(id),
			symbol         TEXT NOT NULL,
			shares         INTEGER,
			price          REAL,
			value          REAL,
			purchase_price REAL,
			profit_loss    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_pass ON valuations(pass_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordPass stores the summary, comparison entries, symbol errors and
// valuations of a published pass in one transaction.
func (r *SQLiteRecorder) RecordPass(state *model.RefreshState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var passErr string
	if state.Err != nil {
		passErr = state.Err.Error()
	}
	res, err := tx.Exec(`INSERT INTO passes
		(seq, timestamp, started_at, status, currency, symbols, succeeded, failed, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		state.Seq, state.PublishedAt.Unix(), state.StartedAt.Unix(), string(state.Status),
		state.Snapshot.Currency, len(state.Config.Symbols),
		len(state.Succeeded()), len(state.Failed()), passErr,
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	passID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, e := range state.Snapshot.Entries {
		if _, err := tx.Exec(`INSERT INTO snapshot_entries (pass_id, symbol, close) VALUES (?,?,?)`,
			passID, e.Symbol, e.Close); err != nil {
			return fmt.Errorf("insert snapshot entry: %w", err)
		}
	}
	for _, f := range state.Failed() {
		if _, err := tx.Exec(`INSERT INTO symbol_errors (pass_id, symbol, kind, message) VALUES (?,?,?,?)`,
			passID, f.Symbol, model.ErrorKind(f.Err), f.Err.Error()); err != nil {
			return fmt.Errorf("insert symbol error: %w", err)
		}
	}
	for _, v := range state.Valuations {
		var pl sql.NullFloat64
		if v.ProfitLoss.Valid {
			pl = sql.NullFloat64{Float64: v.ProfitLoss.Decimal.InexactFloat64(), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO valuations
			(pass_id, symbol, shares, price, value, purchase_price, profit_loss)
			VALUES (?,?,?,?,?,?,?)`,
			passID, v.Symbol, v.Shares, v.Price.InexactFloat64(), v.Value.InexactFloat64(),
			v.PurchasePrice.InexactFloat64(), pl); err != nil {
			return fmt.Errorf("insert valuation: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) History(limit int) ([]PassRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, seq, timestamp, started_at, status, currency,
		symbols, succeeded, failed, error
		FROM passes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	out := []PassRecord{}
	for rows.Next() {
		var (
			id                 int64
			rec                PassRecord
			published, started int64
			status             string
			currency, passErr  sql.NullString
		)
		if err := rows.Scan(&id, &rec.Seq, &published, &started, &status, &currency,
			&rec.Symbols, &rec.Succeeded, &rec.Failed, &passErr); err != nil {
			return nil, err
		}
		rec.Status = model.PassStatus(status)
		rec.Currency = currency.String
		rec.Error = passErr.String
		rec.PublishedAt = time.Unix(published, 0)
		rec.StartedAt = time.Unix(started, 0)
		rec.Entries = []model.ComparisonEntry{}
		ids = append(ids, id)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		entries, err := r.entries(id)
		if err != nil {
			return nil, err
		}
		out[i].Entries = entries
	}
	return out, nil
}

func (r *SQLiteRecorder) entries(passID int64) ([]model.ComparisonEntry, error) {
	rows, err := r.db.Query(`SELECT symbol, close FROM snapshot_entries WHERE pass_id = ? ORDER BY id`, passID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ComparisonEntry{}
	for rows.Next() {
		var e model.ComparisonEntry
		if err := rows.Scan(&e.Symbol, &e.Close); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
