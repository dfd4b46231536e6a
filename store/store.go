// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store is the persistence boundary of the election service.
//
// InsertVoteIfAbsent is the only write the ledger depends on for the
// one-vote-per-voter rule: it must check and insert as a single atomic step
// keyed by voter id and report whether this call created the row.
type Store interface {
	// Voters
	CreateVoter(ctx context.Context, v models.Voter) error
	GetVoter(ctx context.Context, externalID string) (models.Voter, error)
	SetVoterEligibility(ctx context.Context, externalID string, eligible bool) (models.Voter, error)
	ListVoters(ctx context.Context) ([]models.Voter, error)
	CountEligibleVoters(ctx context.Context) (int, error)

	// Candidates
	CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error)
	GetCandidate(ctx context.Context, id int64) (models.Candidate, error)
	SetCandidateActive(ctx context.Context, id int64, active bool) (models.Candidate, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)

	// Votes
	InsertVoteIfAbsent(ctx context.Context, v models.Vote) (bool, error)
	HasVote(ctx context.Context, voterID string) (bool, error)
	CountVotesByCandidate(ctx context.Context) (map[int64]int, error)
	ListVotes(ctx context.Context) ([]models.Vote, error)

	// Election lifecycle. LoadState returns ErrNotFound before the first SaveState.
	LoadState(ctx context.Context) (models.ElectionState, error)
	SaveState(ctx context.Context, state models.ElectionState) error

	// ResetVotes deletes every vote and stores state in one atomic step,
	// returning the number of votes deleted.
	ResetVotes(ctx context.Context, state models.ElectionState) (int, error)

	Close() error
}
