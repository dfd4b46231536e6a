// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election phases
type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseActive Phase = "active"
	PhaseEnded  Phase = "ended"
)

// Well-known voter attributes usable as stats grouping keys
const (
	AttrGender  = "gender"
	AttrVillage = "village"
	AttrRegion  = "region"
)

// Request types

type RegisterVoterRequest struct {
	ExternalID string            `json:"external_id"`
	FullName   string            `json:"full_name"`
	Eligible   *bool             `json:"eligible,omitempty"` // defaults to true
	Gender     string            `json:"gender,omitempty"`
	Village    string            `json:"village,omitempty"`
	Region     string            `json:"region,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type SetEligibilityRequest struct {
	Eligible *bool `json:"eligible"`
}

type AddCandidateRequest struct {
	DisplayName string `json:"display_name"`
	Party       string `json:"party,omitempty"`
}

type StartVotingRequest struct {
	Deadline *time.Time `json:"deadline,omitempty"`
}

type SubmitVoteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID int64  `json:"candidate_id"`
}

// Response types

type HasVotedResponse struct {
	VoterID  string `json:"voter_id"`
	HasVoted bool   `json:"has_voted"`
}

type TallyResponse struct {
	Phase       Phase        `json:"phase"`
	TotalVotes  int          `json:"total_votes"`
	Provisional bool         `json:"provisional"`
	Results     []TallyEntry `json:"results"`
}

type ResetResponse struct {
	Cleared int   `json:"cleared"`
	Phase   Phase `json:"phase"`
}

// Domain types

type Candidate struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Party       string    `json:"party,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Voter struct {
	ExternalID   string            `json:"external_id"`
	FullName     string            `json:"full_name"`
	Eligible     bool              `json:"eligible"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// Attribute returns the voter's value for a grouping key, or "" when unset.
func (v Voter) Attribute(key string) string {
	if v.Attributes == nil {
		return ""
	}
	return v.Attributes[key]
}

type Vote struct {
	ReceiptID   string    `json:"receipt_id"`
	VoterID     string    `json:"voter_id"`
	CandidateID int64     `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

// Receipt is returned to the caller of a successful vote submission
type Receipt struct {
	ReceiptID   string    `json:"receipt_id"`
	VoterID     string    `json:"voter_id"`
	CandidateID int64     `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

type ElectionState struct {
	Phase     Phase      `json:"phase"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type ElectionStatus struct {
	ElectionState
	TotalVotes      int `json:"total_votes"`
	TotalCandidates int `json:"total_candidates"`
}

// Tally result types

type TallyEntry struct {
	CandidateID int64   `json:"candidate_id"`
	DisplayName string  `json:"display_name"`
	Party       string  `json:"party,omitempty"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"` // rounded to one decimal
}

// Leader is either the final winner or a provisional leader while voting is active
type Leader struct {
	TallyEntry
	TotalVotes  int  `json:"total_votes"`
	Provisional bool `json:"provisional"`
}

type GroupStats struct {
	Group    string  `json:"group"`
	Votes    int     `json:"votes"`
	Eligible int     `json:"eligible"`
	Turnout  float64 `json:"turnout"`
}

type Stats struct {
	TotalVotes    int          `json:"total_votes"`
	TotalEligible int          `json:"total_eligible"`
	Turnout       float64      `json:"turnout"`
	GroupBy       string       `json:"group_by,omitempty"`
	Breakdown     []GroupStats `json:"breakdown,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
