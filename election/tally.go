// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/danielhkuo/quickly-vote/models"
)

// UnspecifiedGroup labels voters that lack the requested grouping attribute
const UnspecifiedGroup = "unspecified"

// Tally counts votes per active candidate, ordered by count descending and
// then candidate id ascending. Percentages are of all votes, rounded to one
// decimal, and 0 when nobody has voted.
func (s *Service) Tally(ctx context.Context) ([]models.TallyEntry, error) {
	entries, _, err := s.tally(ctx)
	return entries, err
}

// TallyWithTotal is Tally plus the total it was computed from
func (s *Service) TallyWithTotal(ctx context.Context) ([]models.TallyEntry, int, error) {
	return s.tally(ctx)
}

func (s *Service) tally(ctx context.Context) ([]models.TallyEntry, int, error) {
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	counts, err := s.store.CountVotesByCandidate(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	entries := make([]models.TallyEntry, 0, len(candidates))
	for _, c := range candidates {
		if !c.Active {
			continue
		}
		count := counts[c.ID]
		entries = append(entries, models.TallyEntry{
			CandidateID: c.ID,
			DisplayName: c.DisplayName,
			Party:       c.Party,
			Count:       count,
			Percentage:  percentage(count, total),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.CandidateID < b.CandidateID
	})

	return entries, total, nil
}

// Winner is the final result: the candidate with the most votes, lowest id
// on a tie. Only available once the election has ended.
func (s *Service) Winner(ctx context.Context) (models.Leader, error) {
	s.expireIfDue(ctx)

	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()

	if s.state.Phase != models.PhaseEnded {
		return models.Leader{}, ErrElectionStillActive
	}
	return s.leaderLocked(ctx, false)
}

// LiveLeader is the same computation as Winner but allowed while voting is
// active. The result is marked provisional until the election ends.
func (s *Service) LiveLeader(ctx context.Context) (models.Leader, error) {
	s.expireIfDue(ctx)

	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()

	if s.state.Phase == models.PhaseSetup {
		return models.Leader{}, ErrVotingNotActive
	}
	return s.leaderLocked(ctx, s.state.Phase != models.PhaseEnded)
}

func (s *Service) leaderLocked(ctx context.Context, provisional bool) (models.Leader, error) {
	entries, total, err := s.tally(ctx)
	if err != nil {
		return models.Leader{}, err
	}
	if total == 0 || len(entries) == 0 {
		return models.Leader{}, ErrNoVotesCast
	}

	return models.Leader{
		TallyEntry:  entries[0],
		TotalVotes:  total,
		Provisional: provisional,
	}, nil
}

// Stats reports totals and turnout. With a non-empty groupBy it also breaks
// both down by that voter attribute; this is a read-only join of the ledger
// against the registry.
func (s *Service) Stats(ctx context.Context, groupBy string) (models.Stats, error) {
	if groupBy == "" {
		return s.totals(ctx)
	}

	voters, err := s.store.ListVoters(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to list voters: %w", err)
	}
	votes, err := s.store.ListVotes(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to list votes: %w", err)
	}

	eligible := 0
	for _, v := range voters {
		if v.Eligible {
			eligible++
		}
	}

	stats := models.Stats{
		TotalVotes:    len(votes),
		TotalEligible: eligible,
		Turnout:       percentage(len(votes), eligible),
	}

	groups := make(map[string]*models.GroupStats)
	group := func(name string) *models.GroupStats {
		g, ok := groups[name]
		if !ok {
			g = &models.GroupStats{Group: name}
			groups[name] = g
		}
		return g
	}

	groupOf := make(map[string]string, len(voters))
	for _, v := range voters {
		name := v.Attribute(groupBy)
		if name == "" {
			name = UnspecifiedGroup
		}
		groupOf[v.ExternalID] = name
		if v.Eligible {
			group(name).Eligible++
		}
	}
	for _, vote := range votes {
		name, ok := groupOf[vote.VoterID]
		if !ok {
			name = UnspecifiedGroup
		}
		group(name).Votes++
	}

	stats.GroupBy = groupBy
	stats.Breakdown = make([]models.GroupStats, 0, len(groups))
	for _, g := range groups {
		g.Turnout = percentage(g.Votes, g.Eligible)
		stats.Breakdown = append(stats.Breakdown, *g)
	}
	sort.Slice(stats.Breakdown, func(i, j int) bool {
		return stats.Breakdown[i].Group < stats.Breakdown[j].Group
	})

	return stats, nil
}

// totals is Stats without a breakdown, computed from counts alone
func (s *Service) totals(ctx context.Context) (models.Stats, error) {
	eligible, err := s.store.CountEligibleVoters(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count eligible voters: %w", err)
	}
	counts, err := s.store.CountVotesByCandidate(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count votes: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return models.Stats{
		TotalVotes:    total,
		TotalEligible: eligible,
		Turnout:       percentage(total, eligible),
	}, nil
}

// percentage returns part/whole*100 rounded to one decimal, 0 when whole is 0
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}
