// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs a single national-ID based election: a voter registry,
a candidate directory, a setup → active → ended lifecycle, a one-vote-per-voter
ledger and live tallies.

# Starting the Server

The server requires environment variables or CLI flags for configuration.
A .env file in the working directory is loaded first:

	DATABASE_URL=file:vote.db ADMIN_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --admin-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file/DSN or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ELECTION_NAME (--election): Admin key scope (default: general)
  - VOTER_ID_LENGTH (--id-length): Digits per voter id (default: 16)
  - DEADLINE_CHECK_INTERVAL (--deadline-check): Deadline watcher period (default: 5s)

The admin key for the configured election is printed by

	go run ./cmd/electctl admin-key

# Architecture

  - election: Registry, candidates, lifecycle, ledger and tally
  - store: Persistence (memory, PostgreSQL, SQLite) with transient-fault retry
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin guard, JSON helpers
  - models: Domain and request/response types
  - auth: Admin keys and privacy hashes
  - db: Schema creation
  - cliparse: Configuration parsing
  - cmd/electctl: Operator CLI over the HTTP API

The HTTP server and the deadline watcher run under one errgroup and stop
together on SIGINT/SIGTERM.
*/
package main
