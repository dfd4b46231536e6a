// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// SubmitVote records one vote for voterID. Checks run in order: phase,
// voter registration, eligibility, candidate, then an atomic insert that
// fails with ErrAlreadyVoted if the voter already has a vote. A failed call
// writes nothing.
func (s *Service) SubmitVote(ctx context.Context, voterID string, candidateID int64) (models.Receipt, error) {
	voterID = strings.TrimSpace(voterID)
	s.expireIfDue(ctx)

	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()

	if s.state.Phase != models.PhaseActive || s.deadlinePassedLocked() {
		return models.Receipt{}, ErrVotingNotActive
	}

	s.votersMu.RLock()
	defer s.votersMu.RUnlock()

	voter, err := s.store.GetVoter(ctx, voterID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Receipt{}, ErrVoterNotRegistered
	}
	if err != nil {
		return models.Receipt{}, fmt.Errorf("failed to resolve voter: %w", err)
	}
	if !voter.Eligible {
		return models.Receipt{}, ErrVoterNotEligible
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Receipt{}, ErrInvalidCandidate
	}
	if err != nil {
		return models.Receipt{}, fmt.Errorf("failed to resolve candidate: %w", err)
	}
	if !candidate.Active {
		return models.Receipt{}, ErrInvalidCandidate
	}

	vote, err := s.appendVote(ctx, voterID, candidateID)
	if err != nil {
		return models.Receipt{}, err
	}

	slog.Debug("vote recorded", "candidate_id", candidateID, "receipt_id", vote.ReceiptID)
	return models.Receipt{
		ReceiptID:   vote.ReceiptID,
		VoterID:     vote.VoterID,
		CandidateID: vote.CandidateID,
		CastAt:      vote.CastAt,
	}, nil
}

// appendVote inserts a vote stamped by nextCastAt. Inserts for different
// voters run in parallel; the store's insert-if-absent is the per-voter
// serialization point.
func (s *Service) appendVote(ctx context.Context, voterID string, candidateID int64) (models.Vote, error) {
	vote := models.Vote{
		ReceiptID:   uuid.NewString(),
		VoterID:     voterID,
		CandidateID: candidateID,
		CastAt:      s.nextCastAt(),
	}

	inserted, err := s.store.InsertVoteIfAbsent(ctx, vote)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to record vote: %w", err)
	}
	if !inserted {
		return models.Vote{}, ErrAlreadyVoted
	}
	return vote, nil
}

// nextCastAt returns the current time, never earlier than a previous stamp
func (s *Service) nextCastAt() time.Time {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	castAt := s.now().UTC().Truncate(time.Microsecond)
	if castAt.Before(s.lastCast) {
		castAt = s.lastCast
	}
	s.lastCast = castAt
	return castAt
}

// HasVoted is advisory: SubmitVote re-checks atomically
func (s *Service) HasVoted(ctx context.Context, voterID string) (bool, error) {
	voted, err := s.store.HasVote(ctx, strings.TrimSpace(voterID))
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return voted, nil
}

// ResetAll clears the ledger and returns the election to Setup in one step.
// Voters and candidates are kept.
func (s *Service) ResetAll(ctx context.Context) (int, error) {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	next := models.ElectionState{Phase: models.PhaseSetup}
	cleared, err := s.store.ResetVotes(ctx, next)
	if err != nil {
		return 0, fmt.Errorf("failed to reset election: %w", err)
	}
	s.state = next

	slog.Warn("election reset", "votes_cleared", cleared)
	return cleared, nil
}
