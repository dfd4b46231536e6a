// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// SQLStore implements Store on PostgreSQL or SQLite through database/sql.
// Queries use $N placeholders, ON CONFLICT and RETURNING, which both
// dialects accept.
type SQLStore struct {
	db         *sql.DB
	dialect    string
	newBackOff func() backoff.BackOff
	commit     func(*sql.Tx) error
}

// NewSQLStore wraps an open connection. The schema must already exist
// (see db.CreateSchema).
func NewSQLStore(conn *sql.DB, dialect string) (*SQLStore, error) {
	if _, err := db.DriverName(dialect); err != nil {
		return nil, err
	}
	if dialect == db.DialectSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY storms
		conn.SetMaxOpenConns(1)
	}
	return &SQLStore{
		db:         conn,
		dialect:    dialect,
		newBackOff: defaultBackOff,
		commit:     (*sql.Tx).Commit,
	}, nil
}

// Open connects, pings and creates the schema
func Open(dialect, dsn string) (*SQLStore, error) {
	driverName, err := db.DriverName(dialect)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQLStore(conn, dialect)
}

// DB exposes the underlying connection (used by tests and health checks)
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Voters

// CreateVoter reports ErrConflict for an existing id. A conflict seen on a
// retry may be this call's own first insert whose acknowledgement was lost;
// confirmVoter tells the two apart.
func (s *SQLStore) CreateVoter(ctx context.Context, v models.Voter) error {
	attrs, err := encodeAttributes(v.Attributes)
	if err != nil {
		return err
	}

	attempt := 0
	return s.withRetry(ctx, "create_voter", func() error {
		attempt++
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO voter (external_id, full_name, eligible, attributes, registered_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (external_id) DO NOTHING
		`, v.ExternalID, v.FullName, v.Eligible, attrs, v.RegisteredAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert voter: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			if attempt > 1 {
				return s.confirmVoter(ctx, v)
			}
			return ErrConflict
		}
		return nil
	})
}

// confirmVoter returns nil when the stored row is exactly v, ErrConflict
// when it belongs to someone else
func (s *SQLStore) confirmVoter(ctx context.Context, v models.Voter) error {
	stored, err := scanVoter(s.db.QueryRowContext(ctx, `
		SELECT external_id, full_name, eligible, attributes, registered_at
		FROM voter
		WHERE external_id = $1
	`, v.ExternalID))
	if err != nil {
		return err
	}
	if !sameVoter(stored, v) {
		return ErrConflict
	}
	return nil
}

func sameVoter(a, b models.Voter) bool {
	if a.ExternalID != b.ExternalID || a.FullName != b.FullName || a.Eligible != b.Eligible {
		return false
	}
	if !a.RegisteredAt.Truncate(time.Microsecond).Equal(b.RegisteredAt.Truncate(time.Microsecond)) {
		return false
	}
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, val := range a.Attributes {
		if b.Attributes[k] != val {
			return false
		}
	}
	return true
}

func (s *SQLStore) GetVoter(ctx context.Context, externalID string) (models.Voter, error) {
	var v models.Voter
	err := s.withRetry(ctx, "get_voter", func() error {
		var err error
		v, err = scanVoter(s.db.QueryRowContext(ctx, `
			SELECT external_id, full_name, eligible, attributes, registered_at
			FROM voter
			WHERE external_id = $1
		`, externalID))
		return err
	})
	return v, err
}

func (s *SQLStore) SetVoterEligibility(ctx context.Context, externalID string, eligible bool) (models.Voter, error) {
	var v models.Voter
	err := s.withRetry(ctx, "set_voter_eligibility", func() error {
		var err error
		v, err = scanVoter(s.db.QueryRowContext(ctx, `
			UPDATE voter
			SET eligible = $1
			WHERE external_id = $2
			RETURNING external_id, full_name, eligible, attributes, registered_at
		`, eligible, externalID))
		return err
	})
	return v, err
}

func (s *SQLStore) ListVoters(ctx context.Context) ([]models.Voter, error) {
	var voters []models.Voter
	err := s.withRetry(ctx, "list_voters", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT external_id, full_name, eligible, attributes, registered_at
			FROM voter
			ORDER BY external_id
		`)
		if err != nil {
			return fmt.Errorf("failed to query voters: %w", err)
		}
		defer rows.Close()

		voters = []models.Voter{}
		for rows.Next() {
			v, err := scanVoter(rows)
			if err != nil {
				return err
			}
			voters = append(voters, v)
		}
		return rows.Err()
	})
	return voters, err
}

func (s *SQLStore) CountEligibleVoters(ctx context.Context) (int, error) {
	var count int
	err := s.withRetry(ctx, "count_eligible_voters", func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM voter WHERE eligible = TRUE
		`).Scan(&count)
	})
	return count, err
}

// Candidates

// CreateCandidate is not retried: a lost commit acknowledgement would
// otherwise create the candidate twice.
func (s *SQLStore) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO candidate (display_name, party, active, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.DisplayName, c.Party, c.Active, c.CreatedAt.UTC()).Scan(&c.ID)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
	}
	return c, nil
}

func (s *SQLStore) GetCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	var c models.Candidate
	err := s.withRetry(ctx, "get_candidate", func() error {
		var err error
		c, err = scanCandidate(s.db.QueryRowContext(ctx, `
			SELECT id, display_name, party, active, created_at
			FROM candidate
			WHERE id = $1
		`, id))
		return err
	})
	return c, err
}

func (s *SQLStore) SetCandidateActive(ctx context.Context, id int64, active bool) (models.Candidate, error) {
	var c models.Candidate
	err := s.withRetry(ctx, "set_candidate_active", func() error {
		var err error
		c, err = scanCandidate(s.db.QueryRowContext(ctx, `
			UPDATE candidate
			SET active = $1
			WHERE id = $2
			RETURNING id, display_name, party, active, created_at
		`, active, id))
		return err
	})
	return c, err
}

func (s *SQLStore) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := s.withRetry(ctx, "list_candidates", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, display_name, party, active, created_at
			FROM candidate
			ORDER BY id
		`)
		if err != nil {
			return fmt.Errorf("failed to query candidates: %w", err)
		}
		defer rows.Close()

		candidates = []models.Candidate{}
		for rows.Next() {
			c, err := scanCandidate(rows)
			if err != nil {
				return err
			}
			candidates = append(candidates, c)
		}
		return rows.Err()
	})
	return candidates, err
}

// Votes

// InsertVoteIfAbsent relies on the primary key on vote.voter_id: the insert
// and the uniqueness check are one statement. A retry after a lost commit
// acknowledgement finds the row and reports false, so a vote is never
// counted twice.
func (s *SQLStore) InsertVoteIfAbsent(ctx context.Context, v models.Vote) (bool, error) {
	var inserted bool
	err := s.withRetry(ctx, "insert_vote", func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO vote (voter_id, receipt_id, candidate_id, cast_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (voter_id) DO NOTHING
		`, v.VoterID, v.ReceiptID, v.CandidateID, v.CastAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted = affected == 1
		return nil
	})
	return inserted, err
}

func (s *SQLStore) HasVote(ctx context.Context, voterID string) (bool, error) {
	var exists bool
	err := s.withRetry(ctx, "has_vote", func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM vote WHERE voter_id = $1)
		`, voterID).Scan(&exists)
	})
	return exists, err
}

func (s *SQLStore) CountVotesByCandidate(ctx context.Context) (map[int64]int, error) {
	var counts map[int64]int
	err := s.withRetry(ctx, "count_votes", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT candidate_id, COUNT(*)
			FROM vote
			GROUP BY candidate_id
		`)
		if err != nil {
			return fmt.Errorf("failed to count votes: %w", err)
		}
		defer rows.Close()

		counts = make(map[int64]int)
		for rows.Next() {
			var candidateID int64
			var count int
			if err := rows.Scan(&candidateID, &count); err != nil {
				return fmt.Errorf("failed to scan vote count: %w", err)
			}
			counts[candidateID] = count
		}
		return rows.Err()
	})
	return counts, err
}

func (s *SQLStore) ListVotes(ctx context.Context) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.withRetry(ctx, "list_votes", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT receipt_id, voter_id, candidate_id, cast_at
			FROM vote
			ORDER BY cast_at, voter_id
		`)
		if err != nil {
			return fmt.Errorf("failed to query votes: %w", err)
		}
		defer rows.Close()

		votes = []models.Vote{}
		for rows.Next() {
			var v models.Vote
			if err := rows.Scan(&v.ReceiptID, &v.VoterID, &v.CandidateID, &v.CastAt); err != nil {
				return fmt.Errorf("failed to scan vote: %w", err)
			}
			votes = append(votes, v)
		}
		return rows.Err()
	})
	return votes, err
}

// Election lifecycle

func (s *SQLStore) LoadState(ctx context.Context) (models.ElectionState, error) {
	var state models.ElectionState
	err := s.withRetry(ctx, "load_state", func() error {
		var phase string
		var deadline, startedAt, endedAt sql.NullTime
		err := s.db.QueryRowContext(ctx, `
			SELECT phase, deadline, started_at, ended_at
			FROM election_state
			WHERE id = 1
		`).Scan(&phase, &deadline, &startedAt, &endedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query election state: %w", err)
		}

		state = models.ElectionState{
			Phase:     models.Phase(phase),
			Deadline:  fromNullTime(deadline),
			StartedAt: fromNullTime(startedAt),
			EndedAt:   fromNullTime(endedAt),
		}
		return nil
	})
	return state, err
}

func (s *SQLStore) SaveState(ctx context.Context, state models.ElectionState) error {
	return s.withRetry(ctx, "save_state", func() error {
		return saveState(ctx, s.db, state)
	})
}

// ResetVotes runs under the service's exclusive lock, so no vote arrives
// between attempts. A retry that deletes nothing after a failed commit means
// that commit did apply; its count is reported.
func (s *SQLStore) ResetVotes(ctx context.Context, state models.ElectionState) (int, error) {
	var cleared, uncommitted int
	err := s.withRetry(ctx, "reset_votes", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx, `DELETE FROM vote`)
		if err != nil {
			return fmt.Errorf("failed to delete votes: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}

		if err := saveState(ctx, tx, state); err != nil {
			return err
		}

		if err := s.commit(tx); err != nil {
			uncommitted = int(affected)
			return fmt.Errorf("failed to commit reset: %w", err)
		}
		cleared = int(affected)
		if cleared == 0 {
			cleared = uncommitted
		}
		return nil
	})
	return cleared, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveState(ctx context.Context, e execer, state models.ElectionState) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO election_state (id, phase, deadline, started_at, ended_at, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET phase = excluded.phase,
		    deadline = excluded.deadline,
		    started_at = excluded.started_at,
		    ended_at = excluded.ended_at,
		    updated_at = excluded.updated_at
	`, string(state.Phase), toNullTime(state.Deadline), toNullTime(state.StartedAt),
		toNullTime(state.EndedAt), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save election state: %w", err)
	}
	return nil
}

// Scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoter(row rowScanner) (models.Voter, error) {
	var v models.Voter
	var attrs string
	err := row.Scan(&v.ExternalID, &v.FullName, &v.Eligible, &attrs, &v.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to scan voter: %w", err)
	}

	v.Attributes, err = decodeAttributes(attrs)
	if err != nil {
		return models.Voter{}, err
	}
	return v, nil
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.DisplayName, &c.Party, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return c, nil
}

func encodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode voter attributes: %w", err)
	}
	return string(b), nil
}

func decodeAttributes(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode voter attributes: %w", err)
	}
	return attrs, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
