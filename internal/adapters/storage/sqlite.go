package storage

// sqlite.go: backend embebido para el estado del motor.
//
// Estrategia:
//   - `positions`: una fila por posición; el historial de precios va como JSON.
//     UpdatePositions reescribe la tabla completa dentro de una transacción
//     (load → fn → replace), igual que el backend de ficheros.
//   - `scan_log`: una fila por scan; se recorta a domain.MaxScanLog en cada append.
//   - `scheduler_state`: siempre 1 fila (id = 1).
//   - Un único sync.Mutex serializa todos los read-modify-write.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id            TEXT PRIMARY KEY,
    seq           INTEGER NOT NULL,
    event         TEXT    NOT NULL,
    team          TEXT    NOT NULL,
    token_id      TEXT    NOT NULL,
    entry_price   REAL    NOT NULL,
    current_price REAL    NOT NULL,
    fair_value    REAL    NOT NULL,
    entry_edge    REAL    NOT NULL,
    take_profit   REAL    NOT NULL,
    stop_loss     REAL    NOT NULL,
    stake_usd     REAL    NOT NULL,
    start_time    TEXT,
    status        TEXT    NOT NULL,
    close_reason  TEXT    NOT NULL DEFAULT '',
    opened_at     TEXT,
    closed_at     TEXT,
    pnl_pct       REAL    NOT NULL DEFAULT 0,
    pnl_usd       REAL    NOT NULL DEFAULT 0,
    price_history TEXT    NOT NULL DEFAULT '[]'
);

-- Un scan por fila, ventana acotada
CREATE TABLE IF NOT EXISTS scan_log (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at    TEXT,
    events        INTEGER NOT NULL DEFAULT 0,
    opportunities INTEGER NOT NULL DEFAULT 0,
    results       TEXT    NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS scheduler_state (
    id               INTEGER PRIMARY KEY CHECK (id = 1),
    last_scan        TEXT,
    last_scan_date   TEXT    NOT NULL DEFAULT '',
    manual_triggered INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status, token_id);
`

// SQLiteStore implementa ports.StateStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// --- positions ---

func (s *SQLiteStore) LoadPositions(ctx context.Context) ([]domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPositions(ctx, s.db)
}

func (s *SQLiteStore) UpdatePositions(ctx context.Context, fn func([]domain.Position) ([]domain.Position, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpdatePositions: begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := s.loadPositions(ctx, tx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("storage.UpdatePositions: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
			(id, seq, event, team, token_id, entry_price, current_price, fair_value,
			 entry_edge, take_profit, stop_loss, stake_usd, start_time, status,
			 close_reason, opened_at, closed_at, pnl_pct, pnl_usd, price_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.UpdatePositions: prepare: %w", err)
	}
	defer stmt.Close()

	for i, p := range next {
		history, err := json.Marshal(nonNilHistory(p.PriceHistory))
		if err != nil {
			return fmt.Errorf("storage.UpdatePositions: marshal history %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, i, p.EventTitle, p.Team, p.TokenID,
			p.EntryPrice, p.CurrentPrice, p.FairValue, p.EntryEdge,
			p.TakeProfit, p.StopLoss, p.Stake,
			formatTime(p.StartTime),
			string(p.Status), string(p.CloseReason),
			formatTime(p.OpenedAt), formatTimePtr(p.ClosedAt),
			p.PnLPct, p.PnLUSD, string(history),
		); err != nil {
			return fmt.Errorf("storage.UpdatePositions: insert %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpdatePositions: commit: %w", err)
	}
	return nil
}

// querier es el subconjunto común de *sql.DB y *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) loadPositions(ctx context.Context, q querier) ([]domain.Position, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, event, team, token_id, entry_price, current_price, fair_value,
		       entry_edge, take_profit, stop_loss, stake_usd, start_time, status,
		       close_reason, opened_at, closed_at, pnl_pct, pnl_usd, price_history
		FROM positions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadPositions: query: %w", err)
	}
	defer rows.Close()

	positions := make([]domain.Position, 0)
	for rows.Next() {
		var (
			p                 domain.Position
			status, reason    string
			startTime, opened sql.NullString
			closedAt          sql.NullString
			history           string
		)
		if err := rows.Scan(
			&p.ID, &p.EventTitle, &p.Team, &p.TokenID,
			&p.EntryPrice, &p.CurrentPrice, &p.FairValue, &p.EntryEdge,
			&p.TakeProfit, &p.StopLoss, &p.Stake,
			&startTime, &status, &reason, &opened, &closedAt,
			&p.PnLPct, &p.PnLUSD, &history,
		); err != nil {
			return nil, fmt.Errorf("storage.LoadPositions: scan row: %w", err)
		}
		p.Status = domain.PositionStatus(status)
		p.CloseReason = domain.CloseReason(reason)
		p.StartTime = parseTime(startTime)
		p.OpenedAt = parseTime(opened)
		if closedAt.Valid {
			t := parseTime(closedAt)
			p.ClosedAt = &t
		}
		if err := json.Unmarshal([]byte(history), &p.PriceHistory); err != nil {
			return nil, fmt.Errorf("storage.LoadPositions: history %s: %w", p.ID, err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// --- scan log ---

func (s *SQLiteStore) LoadScanLog(ctx context.Context) ([]domain.ScanLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT scanned_at, events, opportunities, results FROM scan_log ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadScanLog: query: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ScanLogEntry, 0)
	for rows.Next() {
		var (
			e       domain.ScanLogEntry
			at      sql.NullString
			results string
		)
		if err := rows.Scan(&at, &e.Events, &e.Opportunities, &results); err != nil {
			return nil, fmt.Errorf("storage.LoadScanLog: scan row: %w", err)
		}
		e.At = parseTime(at)
		if err := json.Unmarshal([]byte(results), &e.Results); err != nil {
			return nil, fmt.Errorf("storage.LoadScanLog: results: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) AppendScanLog(ctx context.Context, entry domain.ScanLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := json.Marshal(nonNilResults(entry.Results))
	if err != nil {
		return fmt.Errorf("storage.AppendScanLog: marshal: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.AppendScanLog: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_log (scanned_at, events, opportunities, results) VALUES (?, ?, ?, ?)`,
		formatTime(entry.At), entry.Events, entry.Opportunities, string(results),
	); err != nil {
		return fmt.Errorf("storage.AppendScanLog: insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scan_log WHERE id NOT IN (SELECT id FROM scan_log ORDER BY id DESC LIMIT ?)`,
		domain.MaxScanLog,
	); err != nil {
		return fmt.Errorf("storage.AppendScanLog: prune: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.AppendScanLog: commit: %w", err)
	}
	return nil
}

// --- scheduler state ---

func (s *SQLiteStore) LoadState(ctx context.Context) (domain.SchedulerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState(ctx, s.db)
}

func (s *SQLiteStore) UpdateState(ctx context.Context, fn func(*domain.SchedulerState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpdateState: begin tx: %w", err)
	}
	defer tx.Rollback()

	state, err := s.loadState(ctx, tx)
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}

	manual := 0
	if state.ManualTriggered {
		manual = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scheduler_state (id, last_scan, last_scan_date, manual_triggered)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_scan        = excluded.last_scan,
			last_scan_date   = excluded.last_scan_date,
			manual_triggered = excluded.manual_triggered
	`, formatTimePtr(state.LastScan), state.LastScanDate, manual); err != nil {
		return fmt.Errorf("storage.UpdateState: upsert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpdateState: commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadState(ctx context.Context, q querier) (domain.SchedulerState, error) {
	var (
		state    domain.SchedulerState
		lastScan sql.NullString
		manual   int
	)
	err := q.QueryRowContext(ctx,
		`SELECT last_scan, last_scan_date, manual_triggered FROM scheduler_state WHERE id = 1`,
	).Scan(&lastScan, &state.LastScanDate, &manual)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SchedulerState{}, nil
	}
	if err != nil {
		return domain.SchedulerState{}, fmt.Errorf("storage.LoadState: %w", err)
	}
	if lastScan.Valid {
		t := parseTime(lastScan)
		state.LastScan = &t
	}
	state.ManualTriggered = manual == 1
	return state, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNilHistory(h []domain.PricePoint) []domain.PricePoint {
	if h == nil {
		return []domain.PricePoint{}
	}
	return h
}

func nonNilResults(r []domain.Opportunity) []domain.Opportunity {
	if r == nil {
		return []domain.Opportunity{}
	}
	return r
}
