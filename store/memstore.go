// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/quickly-vote/models"
)

// MemStore implements Store in process memory.
// Each collection has its own lock; votes and election state share one so
// ResetVotes is atomic.
type MemStore struct {
	votersMu sync.RWMutex
	voters   map[string]models.Voter

	candidatesMu sync.RWMutex
	candidates   map[int64]models.Candidate
	nextID       int64

	ledgerMu sync.RWMutex
	votes    map[string]models.Vote
	state    *models.ElectionState
}

func NewMemStore() *MemStore {
	return &MemStore{
		voters:     make(map[string]models.Voter),
		candidates: make(map[int64]models.Candidate),
		votes:      make(map[string]models.Vote),
	}
}

func (m *MemStore) CreateVoter(_ context.Context, v models.Voter) error {
	m.votersMu.Lock()
	defer m.votersMu.Unlock()

	if _, exists := m.voters[v.ExternalID]; exists {
		return ErrConflict
	}
	m.voters[v.ExternalID] = copyVoter(v)
	return nil
}

func (m *MemStore) GetVoter(_ context.Context, externalID string) (models.Voter, error) {
	m.votersMu.RLock()
	defer m.votersMu.RUnlock()

	v, ok := m.voters[externalID]
	if !ok {
		return models.Voter{}, ErrNotFound
	}
	return copyVoter(v), nil
}

func (m *MemStore) SetVoterEligibility(_ context.Context, externalID string, eligible bool) (models.Voter, error) {
	m.votersMu.Lock()
	defer m.votersMu.Unlock()

	v, ok := m.voters[externalID]
	if !ok {
		return models.Voter{}, ErrNotFound
	}
	v.Eligible = eligible
	m.voters[externalID] = v
	return copyVoter(v), nil
}

func (m *MemStore) ListVoters(_ context.Context) ([]models.Voter, error) {
	m.votersMu.RLock()
	defer m.votersMu.RUnlock()

	voters := make([]models.Voter, 0, len(m.voters))
	for _, v := range m.voters {
		voters = append(voters, copyVoter(v))
	}
	sort.Slice(voters, func(i, j int) bool {
		return voters[i].ExternalID < voters[j].ExternalID
	})
	return voters, nil
}

func (m *MemStore) CountEligibleVoters(_ context.Context) (int, error) {
	m.votersMu.RLock()
	defer m.votersMu.RUnlock()

	count := 0
	for _, v := range m.voters {
		if v.Eligible {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) CreateCandidate(_ context.Context, c models.Candidate) (models.Candidate, error) {
	m.candidatesMu.Lock()
	defer m.candidatesMu.Unlock()

	m.nextID++
	c.ID = m.nextID
	m.candidates[c.ID] = c
	return c, nil
}

func (m *MemStore) GetCandidate(_ context.Context, id int64) (models.Candidate, error) {
	m.candidatesMu.RLock()
	defer m.candidatesMu.RUnlock()

	c, ok := m.candidates[id]
	if !ok {
		return models.Candidate{}, ErrNotFound
	}
	return c, nil
}

func (m *MemStore) SetCandidateActive(_ context.Context, id int64, active bool) (models.Candidate, error) {
	m.candidatesMu.Lock()
	defer m.candidatesMu.Unlock()

	c, ok := m.candidates[id]
	if !ok {
		return models.Candidate{}, ErrNotFound
	}
	c.Active = active
	m.candidates[id] = c
	return c, nil
}

func (m *MemStore) ListCandidates(_ context.Context) ([]models.Candidate, error) {
	m.candidatesMu.RLock()
	defer m.candidatesMu.RUnlock()

	candidates := make([]models.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
	return candidates, nil
}

func (m *MemStore) InsertVoteIfAbsent(_ context.Context, v models.Vote) (bool, error) {
	m.ledgerMu.Lock()
	defer m.ledgerMu.Unlock()

	if _, exists := m.votes[v.VoterID]; exists {
		return false, nil
	}
	m.votes[v.VoterID] = v
	return true, nil
}

func (m *MemStore) HasVote(_ context.Context, voterID string) (bool, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	_, exists := m.votes[voterID]
	return exists, nil
}

func (m *MemStore) CountVotesByCandidate(_ context.Context) (map[int64]int, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	counts := make(map[int64]int)
	for _, v := range m.votes {
		counts[v.CandidateID]++
	}
	return counts, nil
}

func (m *MemStore) ListVotes(_ context.Context) ([]models.Vote, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	votes := make([]models.Vote, 0, len(m.votes))
	for _, v := range m.votes {
		votes = append(votes, v)
	}
	sort.Slice(votes, func(i, j int) bool {
		if !votes[i].CastAt.Equal(votes[j].CastAt) {
			return votes[i].CastAt.Before(votes[j].CastAt)
		}
		return votes[i].VoterID < votes[j].VoterID
	})
	return votes, nil
}

func (m *MemStore) LoadState(_ context.Context) (models.ElectionState, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	if m.state == nil {
		return models.ElectionState{}, ErrNotFound
	}
	return *m.state, nil
}

func (m *MemStore) SaveState(_ context.Context, state models.ElectionState) error {
	m.ledgerMu.Lock()
	defer m.ledgerMu.Unlock()

	m.state = &state
	return nil
}

func (m *MemStore) ResetVotes(_ context.Context, state models.ElectionState) (int, error) {
	m.ledgerMu.Lock()
	defer m.ledgerMu.Unlock()

	cleared := len(m.votes)
	m.votes = make(map[string]models.Vote)
	m.state = &state
	return cleared, nil
}

func (m *MemStore) Close() error {
	return nil
}

func copyVoter(v models.Voter) models.Voter {
	if v.Attributes != nil {
		attrs := make(map[string]string, len(v.Attributes))
		for k, val := range v.Attributes {
			attrs[k] = val
		}
		v.Attributes = attrs
	}
	return v
}
