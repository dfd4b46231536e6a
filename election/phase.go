// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// StartVoting moves Setup -> Active. It needs at least one active candidate.
// A non-nil deadline must lie in the future; once it passes the election
// ends on its own.
func (s *Service) StartVoting(ctx context.Context, deadline *time.Time) (models.ElectionState, error) {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	switch s.state.Phase {
	case models.PhaseActive:
		return s.state, ErrAlreadyActive
	case models.PhaseEnded:
		return s.state, ErrElectionEnded
	}

	now := s.now().UTC()
	if deadline != nil && !deadline.After(now) {
		return s.state, ErrInvalidDeadline
	}

	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return s.state, fmt.Errorf("failed to list candidates: %w", err)
	}
	active := 0
	for _, c := range candidates {
		if c.Active {
			active++
		}
	}
	if active == 0 {
		return s.state, ErrNoCandidates
	}

	next := models.ElectionState{
		Phase:     models.PhaseActive,
		StartedAt: &now,
	}
	if deadline != nil {
		d := deadline.UTC()
		next.Deadline = &d
	}

	if err := s.store.SaveState(ctx, next); err != nil {
		return s.state, fmt.Errorf("failed to start voting: %w", err)
	}
	s.state = next

	slog.Info("voting started", "candidates", active, "deadline", next.Deadline)
	return next, nil
}

// EndVoting moves Active -> Ended. Calling it in any other phase is a no-op
// that returns the current state. When it returns, every vote accepted
// before it is visible to Winner and no further vote can be accepted.
func (s *Service) EndVoting(ctx context.Context) (models.ElectionState, error) {
	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	return s.endLocked(ctx, "admin")
}

func (s *Service) endLocked(ctx context.Context, reason string) (models.ElectionState, error) {
	if s.state.Phase != models.PhaseActive {
		return s.state, nil
	}

	now := s.now().UTC()
	next := s.state
	next.Phase = models.PhaseEnded
	next.EndedAt = &now

	if err := s.store.SaveState(ctx, next); err != nil {
		return s.state, fmt.Errorf("failed to end voting: %w", err)
	}
	s.state = next

	slog.Info("voting ended", "reason", reason)
	return next, nil
}

// deadlinePassedLocked requires phaseMu (shared or exclusive)
func (s *Service) deadlinePassedLocked() bool {
	return s.state.Phase == models.PhaseActive &&
		s.state.Deadline != nil &&
		!s.now().Before(*s.state.Deadline)
}

// expireIfDue ends an active election whose deadline has passed
func (s *Service) expireIfDue(ctx context.Context) {
	s.phaseMu.RLock()
	due := s.deadlinePassedLocked()
	s.phaseMu.RUnlock()
	if !due {
		return
	}

	s.phaseMu.Lock()
	defer s.phaseMu.Unlock()

	if s.deadlinePassedLocked() {
		if _, err := s.endLocked(ctx, "deadline"); err != nil {
			slog.Error("failed to end voting at deadline", "error", err)
		}
	}
}

// WatchDeadline checks the deadline every interval until ctx is done, so the
// election ends on time even when nobody is calling the service.
func (s *Service) WatchDeadline(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.expireIfDue(ctx)
		}
	}
}
