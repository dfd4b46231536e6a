// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, db.DialectPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Both "postgres" (lib/pq) and "sqlite" (modernc.org/sqlite) are supported.

# Tables

  - voter: registered voters keyed by external_id, eligibility flag, grouping attributes (JSON)
  - candidate: roster with auto-assigned numeric ids and an active flag
  - vote: one row per voter (voter_id is the primary key)
  - election_state: single-row lifecycle record (phase, deadline, timestamps)

# Relationships

	voter 1──0..1 vote
	candidate 1──* vote

The primary key on vote.voter_id is the uniqueness constraint behind the
one-vote-per-voter rule; inserts use ON CONFLICT DO NOTHING.
*/
package db
