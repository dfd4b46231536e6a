// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// AddCandidate appends an active candidate to the roster (Setup only)
func (s *Service) AddCandidate(ctx context.Context, displayName, party string) (models.Candidate, error) {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	if s.state.Phase != models.PhaseSetup {
		return models.Candidate{}, ErrElectionNotInSetup
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return models.Candidate{}, ErrInvalidName
	}

	c, err := s.store.CreateCandidate(ctx, models.Candidate{
		DisplayName: displayName,
		Party:       strings.TrimSpace(party),
		Active:      true,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to add candidate: %w", err)
	}

	slog.Info("candidate added", "candidate_id", c.ID, "name", c.DisplayName)
	return c, nil
}

// DeactivateCandidate hides a candidate from voting and tallies (Setup only)
func (s *Service) DeactivateCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	return s.setCandidateActive(ctx, id, false)
}

// ActivateCandidate reverses DeactivateCandidate (Setup only)
func (s *Service) ActivateCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	return s.setCandidateActive(ctx, id, true)
}

func (s *Service) setCandidateActive(ctx context.Context, id int64, active bool) (models.Candidate, error) {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	if s.state.Phase != models.PhaseSetup {
		return models.Candidate{}, ErrElectionNotInSetup
	}

	c, err := s.store.SetCandidateActive(ctx, id, active)
	if errors.Is(err, store.ErrNotFound) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to update candidate: %w", err)
	}

	slog.Info("candidate updated", "candidate_id", id, "active", active)
	return c, nil
}

// LookupCandidate returns one candidate, active or not
func (s *Service) LookupCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to look up candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns the roster ordered by id
func (s *Service) ListCandidates(ctx context.Context, includeInactive bool) ([]models.Candidate, error) {
	all, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if includeInactive {
		return all, nil
	}

	active := make([]models.Candidate, 0, len(all))
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}
