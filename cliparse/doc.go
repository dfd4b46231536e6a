// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string or SQLite file (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - AdminKeySalt: Secret for admin key HMAC (required)
  - ElectionName: Scope of the admin key (default: "general")
  - VoterIDLength: Digits in a national voter ID (default: 16)
  - DeadlineCheckInterval: Deadline watcher period (default: 5s)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--admin-salt      Admin key salt
	--election        Election name
	--id-length       Voter ID length
	--deadline-check  Deadline watcher period

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	ADMIN_KEY_SALT          → --admin-salt
	ELECTION_NAME           → --election
	VOTER_ID_LENGTH         → --id-length
	DEADLINE_CHECK_INTERVAL → --deadline-check

CLI flags take precedence over environment variables. main loads a .env
file (github.com/joho/godotenv) before parsing.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - numeric and duration values must parse and be positive
*/
package cliparse
