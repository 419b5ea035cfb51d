package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Everything here is re-derivable from chain logs; dropping the file only
// costs a rescan.
const schema = `
CREATE TABLE IF NOT EXISTS trader_pnl (
    address TEXT PRIMARY KEY,
    pnl_wei TEXT NOT NULL DEFAULT '0',
    trades INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scan_cursor (
    name TEXT PRIMARY KEY,
    block INTEGER NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ---- Scan cursor ----

// Cursor returns the next block to scan for name; ok is false when nothing
// has been scanned yet.
func (s *Store) Cursor(name string) (block uint64, ok bool, err error) {
	var b int64
	err = s.db.QueryRow("SELECT block FROM scan_cursor WHERE name = ?", name).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint64(b), true, nil
}

// ---- Trader PnL ----

// ApplyScan merges deltas into the running totals and moves the cursor to
// next in one transaction, so a crash never double-counts a block range.
func (s *Store) ApplyScan(cursor string, next uint64, deltas map[string]PnLDelta) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for addr, d := range deltas {
		var cur string
		var trades int
		err := tx.QueryRow("SELECT pnl_wei, trades FROM trader_pnl WHERE address = ?", addr).Scan(&cur, &trades)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			cur = "0"
		case err != nil:
			return fmt.Errorf("read pnl %s: %w", addr, err)
		}
		total, ok := new(big.Int).SetString(cur, 10)
		if !ok {
			return fmt.Errorf("corrupt pnl for %s: %q", addr, cur)
		}
		if d.PnLWei != nil {
			total.Add(total, d.PnLWei)
		}
		if _, err := tx.Exec(`
			INSERT INTO trader_pnl (address, pnl_wei, trades, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(address) DO UPDATE SET pnl_wei=excluded.pnl_wei, trades=excluded.trades, updated_at=excluded.updated_at`,
			addr, total.String(), trades+d.Trades, now); err != nil {
			return fmt.Errorf("write pnl %s: %w", addr, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO scan_cursor (name, block) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET block=excluded.block`,
		cursor, int64(next)); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return tx.Commit()
}

func (s *Store) GetTraderPnLs() ([]TraderPnL, error) {
	rows, err := s.db.Query("SELECT address, pnl_wei, trades, updated_at FROM trader_pnl")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TraderPnL
	for rows.Next() {
		var t TraderPnL
		var wei string
		if err := rows.Scan(&t.Address, &wei, &t.Trades, &t.UpdatedAt); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(wei, 10)
		if !ok {
			return nil, fmt.Errorf("corrupt pnl for %s: %q", t.Address, wei)
		}
		t.PnLWei = v
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetStats() (map[string]int, error) {
	stats := map[string]int{}
	for _, table := range []string{"trader_pnl", "scan_cursor"} {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, err
		}
		stats[table] = n
	}
	return stats, nil
}
