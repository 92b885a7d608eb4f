// Package ledger persists placed orders to SQLite for audit and reporting.
package ledger

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"signalbot/internal/model"
)

// Ledger is a durable append-only record of every order the bot placed.
// Safe for concurrent use.
type Ledger struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id   TEXT NOT NULL,
		figi       TEXT NOT NULL,
		side       TEXT NOT NULL,
		qty        REAL NOT NULL,
		price      REAL NOT NULL,
		fee        REAL NOT NULL DEFAULT 0,
		profit     REAL NOT NULL DEFAULT 0,
		signals    TEXT,
		dry_run    INTEGER NOT NULL DEFAULT 0,
		placed_at  DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_figi ON trades(figi);
	CREATE INDEX IF NOT EXISTS idx_trades_placed_at ON trades(placed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db}, nil
}

// Record appends one trade.
func (l *Ledger) Record(ctx context.Context, rec model.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dry := 0
	if rec.DryRun {
		dry = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO trades (order_id, figi, side, qty, price, fee, profit, signals, dry_run, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OrderID,
		rec.Figi,
		string(rec.Side),
		rec.Quantity,
		rec.Price,
		rec.Fee,
		rec.Profit,
		strings.Join(rec.Signals, ","),
		dry,
		rec.PlacedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Trades returns the last N trades, newest first.
func (l *Ledger) Trades(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx,
		`SELECT order_id, figi, side, qty, price, fee, profit, signals, dry_run, placed_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var (
			rec      model.TradeRecord
			side     string
			signals  string
			dry      int
			placedAt string
		)
		if err := rows.Scan(&rec.OrderID, &rec.Figi, &side, &rec.Quantity, &rec.Price,
			&rec.Fee, &rec.Profit, &signals, &dry, &placedAt); err != nil {
			return nil, err
		}
		rec.Side = model.Side(side)
		if signals != "" {
			rec.Signals = strings.Split(signals, ",")
		}
		rec.DryRun = dry != 0
		if ts, err := time.Parse(time.RFC3339, placedAt); err == nil {
			rec.PlacedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary is the aggregate view over one instrument's trades.
type Summary struct {
	Figi      string
	Buys      int64
	Sells     int64
	TotalFees float64
	Profit    float64 // realized, fee-adjusted, summed over sell legs
}

// Summarize aggregates all trades per instrument.
func (l *Ledger) Summarize(ctx context.Context) ([]Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx,
		`SELECT figi,
		        SUM(CASE WHEN side = 'BUY' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN side = 'SELL' THEN 1 ELSE 0 END),
		        SUM(fee),
		        SUM(profit)
		 FROM trades GROUP BY figi ORDER BY figi`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Figi, &s.Buys, &s.Sells, &s.TotalFees, &s.Profit); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Ping verifies the database is reachable, for health checks.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
