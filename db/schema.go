// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Supported database dialects
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case DialectPostgres:
		ddl = postgresSchema
	case DialectSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database dialect %q", dialect)
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DriverName maps a dialect to the database/sql driver registered for it
func DriverName(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

const postgresSchema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    external_id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    eligible BOOLEAN NOT NULL DEFAULT TRUE,
    attributes TEXT NOT NULL DEFAULT '{}',
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_voter_eligible ON voter(eligible);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id BIGSERIAL PRIMARY KEY,
    display_name TEXT NOT NULL,
    party TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Votes (exactly one per voter)
CREATE TABLE IF NOT EXISTS vote (
    voter_id TEXT PRIMARY KEY REFERENCES voter(external_id),
    receipt_id TEXT NOT NULL UNIQUE,
    candidate_id BIGINT NOT NULL REFERENCES candidate(id),
    cast_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Election lifecycle (single row)
CREATE TABLE IF NOT EXISTS election_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    phase TEXT NOT NULL CHECK (phase IN ('setup', 'active', 'ended')),
    deadline TIMESTAMP,
    started_at TIMESTAMP,
    ended_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

const sqliteSchema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    external_id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    eligible BOOLEAN NOT NULL DEFAULT 1,
    attributes TEXT NOT NULL DEFAULT '{}',
    registered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voter_eligible ON voter(eligible);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    display_name TEXT NOT NULL,
    party TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Votes (exactly one per voter)
CREATE TABLE IF NOT EXISTS vote (
    voter_id TEXT PRIMARY KEY REFERENCES voter(external_id),
    receipt_id TEXT NOT NULL UNIQUE,
    candidate_id INTEGER NOT NULL REFERENCES candidate(id),
    cast_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Election lifecycle (single row)
CREATE TABLE IF NOT EXISTS election_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    phase TEXT NOT NULL CHECK (phase IN ('setup', 'active', 'ended')),
    deadline TIMESTAMP,
    started_at TIMESTAMP,
    ended_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
