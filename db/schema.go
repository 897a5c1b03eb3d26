// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Election metadata (singleton row, id is always 1)
CREATE TABLE IF NOT EXISTS election_meta (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    election_name TEXT NOT NULL,
    start_time TIMESTAMP,
    end_time TIMESTAMP
);

-- Voters
CREATE TABLE IF NOT EXISTS voters (
    wallet_address TEXT PRIMARY KEY,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Vote logs
-- wallet_address is intentionally NOT unique here; the handler enforces
-- one-log-per-wallet with an existence check before insert.
CREATE TABLE IF NOT EXISTS vote_logs (
    id TEXT PRIMARY KEY,
    wallet_address TEXT NOT NULL,
    tx_hash TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vote_logs_wallet ON vote_logs(wallet_address);
`
