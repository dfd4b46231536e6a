// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// DefaultVoterIDLength matches the 16-digit national identifier
const DefaultVoterIDLength = 16

type Config struct {
	// VoterIDLength is the exact number of digits in a voter id (default 16)
	VoterIDLength int
	// Now is the clock; defaults to time.Now
	Now func() time.Time
}

// Service owns the election: voter registry, candidate directory, phase
// state machine, vote ledger and tally engine.
//
// Lock order is phaseMu, then votersMu, then appendMu.
//
//   - phaseMu guards state. Vote submissions hold it shared for their whole
//     check-and-insert; transitions, candidate changes and reset hold it
//     exclusively, so no submission straddles a transition.
//   - votersMu is held shared by submissions across the eligibility check
//     and the insert, exclusively by registry writes.
//   - appendMu guards lastCast so castAt stamps never go backwards. It is
//     not held across the store insert.
type Service struct {
	store store.Store
	now   func() time.Time
	idRe  *regexp.Regexp

	phaseMu sync.RWMutex
	state   models.ElectionState

	votersMu sync.RWMutex

	appendMu sync.Mutex
	lastCast time.Time
}

// New creates a service over st, restoring the persisted election state or
// starting a fresh election in Setup.
func New(ctx context.Context, st store.Store, cfg Config) (*Service, error) {
	if cfg.VoterIDLength <= 0 {
		cfg.VoterIDLength = DefaultVoterIDLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Service{
		store: st,
		now:   cfg.Now,
		idRe:  regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, cfg.VoterIDLength)),
	}

	state, err := st.LoadState(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		state = models.ElectionState{Phase: models.PhaseSetup}
		if err := st.SaveState(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to initialize election state: %w", err)
		}
		slog.Info("election initialized", "phase", state.Phase)
	case err != nil:
		return nil, fmt.Errorf("failed to load election state: %w", err)
	default:
		slog.Info("election state restored", "phase", state.Phase)
	}
	s.state = state

	if state.Phase == models.PhaseActive {
		votes, err := st.ListVotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to restore ledger clock: %w", err)
		}
		if n := len(votes); n > 0 {
			s.lastCast = votes[n-1].CastAt
		}
	}

	return s, nil
}

// State returns a copy of the current lifecycle state
func (s *Service) State(ctx context.Context) models.ElectionState {
	s.expireIfDue(ctx)

	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()
	return s.state
}

// Status is State plus vote and active candidate totals
func (s *Service) Status(ctx context.Context) (models.ElectionStatus, error) {
	state := s.State(ctx)

	counts, err := s.store.CountVotesByCandidate(ctx)
	if err != nil {
		return models.ElectionStatus{}, fmt.Errorf("failed to count votes: %w", err)
	}
	candidates, err := s.ListCandidates(ctx, false)
	if err != nil {
		return models.ElectionStatus{}, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	return models.ElectionStatus{
		ElectionState:   state,
		TotalVotes:      total,
		TotalCandidates: len(candidates),
	}, nil
}
