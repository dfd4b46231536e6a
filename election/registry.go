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

// RegisterVoter adds a voter. The id must be exactly VoterIDLength digits.
func (s *Service) RegisterVoter(ctx context.Context, externalID, fullName string, eligible bool, attrs map[string]string) (models.Voter, error) {
	externalID = strings.TrimSpace(externalID)
	fullName = strings.TrimSpace(fullName)

	if !s.idRe.MatchString(externalID) {
		return models.Voter{}, ErrInvalidIDFormat
	}
	if fullName == "" {
		return models.Voter{}, ErrInvalidName
	}

	v := models.Voter{
		ExternalID:   externalID,
		FullName:     fullName,
		Eligible:     eligible,
		Attributes:   cleanAttributes(attrs),
		RegisteredAt: s.now().UTC(),
	}

	s.votersMu.Lock()
	defer s.votersMu.Unlock()

	err := s.store.CreateVoter(ctx, v)
	if errors.Is(err, store.ErrConflict) {
		return models.Voter{}, ErrDuplicateVoter
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to register voter: %w", err)
	}

	slog.Debug("voter stored", "eligible", eligible)
	return v, nil
}

// SetVoterEligibility toggles eligibility. Votes already cast are kept.
func (s *Service) SetVoterEligibility(ctx context.Context, externalID string, eligible bool) (models.Voter, error) {
	s.votersMu.Lock()
	defer s.votersMu.Unlock()

	v, err := s.store.SetVoterEligibility(ctx, strings.TrimSpace(externalID), eligible)
	if errors.Is(err, store.ErrNotFound) {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to update eligibility: %w", err)
	}

	slog.Debug("voter eligibility stored", "eligible", eligible)
	return v, nil
}

func (s *Service) LookupVoter(ctx context.Context, externalID string) (models.Voter, error) {
	v, err := s.store.GetVoter(ctx, strings.TrimSpace(externalID))
	if errors.Is(err, store.ErrNotFound) {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to look up voter: %w", err)
	}
	return v, nil
}

func (s *Service) ListVoters(ctx context.Context) ([]models.Voter, error) {
	voters, err := s.store.ListVoters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters: %w", err)
	}
	return voters, nil
}

// cleanAttributes trims keys and values and drops empty entries
func cleanAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
