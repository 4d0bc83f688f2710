// Package db opens the local SQLite store backing all record collections.
package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS stock_items (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	classification TEXT NOT NULL DEFAULT '',
	sub_class      TEXT NOT NULL DEFAULT '',
	expiry         TEXT NOT NULL DEFAULT '',
	pack_size      TEXT NOT NULL DEFAULT '',
	unit           TEXT NOT NULL DEFAULT '',
	quantity       INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	critical_level INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dispense_records (
	id                 TEXT PRIMARY KEY,
	drug_id            INTEGER NOT NULL DEFAULT 0,
	drug_name          TEXT NOT NULL DEFAULT '',
	classification     TEXT NOT NULL DEFAULT '',
	sub_class          TEXT NOT NULL DEFAULT '',
	expiry             TEXT NOT NULL DEFAULT '',
	drug_unit          TEXT NOT NULL DEFAULT '',
	department         TEXT NOT NULL,
	quantity_dispensed INTEGER NOT NULL,
	date_dispensed     TIMESTAMP NOT NULL,
	approved_by        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dispense_records_date ON dispense_records (date_dispensed);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open connects to the SQLite file at dsn and ensures the schema exists.
// The connection pool is capped at one connection so transactions serialize.
func Open(dsn string) (*sqlx.DB, error) {
	sdb, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: connect: %w", err)
	}
	sdb.SetMaxOpenConns(1)
	if _, err := sdb.Exec(schema); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("platform/db: ensure schema: %w", err)
	}
	return sdb, nil
}
