// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "errors"

// Every business-rule failure of the service is one of these values.
// Storage faults are wrapped errors that match none of them.
var (
	ErrDuplicateVoter      = errors.New("voter already registered")
	ErrInvalidIDFormat     = errors.New("voter id has invalid format")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrInvalidName         = errors.New("name cannot be empty")
	ErrElectionNotInSetup  = errors.New("election is not in setup")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrNoCandidates        = errors.New("no active candidates")
	ErrAlreadyActive       = errors.New("voting is already active")
	ErrElectionEnded       = errors.New("election has ended")
	ErrInvalidDeadline     = errors.New("deadline must be in the future")
	ErrVotingNotActive     = errors.New("voting is not active")
	ErrVoterNotRegistered  = errors.New("voter not registered")
	ErrVoterNotEligible    = errors.New("voter not eligible")
	ErrInvalidCandidate    = errors.New("invalid candidate")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrElectionStillActive = errors.New("election has not ended")
	ErrNoVotesCast         = errors.New("no votes cast")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrDuplicateVoter, "DuplicateVoter"},
	{ErrInvalidIDFormat, "InvalidIdFormat"},
	{ErrVoterNotFound, "VoterNotFound"},
	{ErrInvalidName, "InvalidName"},
	{ErrElectionNotInSetup, "ElectionNotInSetup"},
	{ErrCandidateNotFound, "CandidateNotFound"},
	{ErrNoCandidates, "NoCandidates"},
	{ErrAlreadyActive, "AlreadyActive"},
	{ErrElectionEnded, "ElectionEnded"},
	{ErrInvalidDeadline, "InvalidDeadline"},
	{ErrVotingNotActive, "VotingNotActive"},
	{ErrVoterNotRegistered, "VoterNotRegistered"},
	{ErrVoterNotEligible, "VoterNotEligible"},
	{ErrInvalidCandidate, "InvalidCandidate"},
	{ErrAlreadyVoted, "AlreadyVoted"},
	{ErrElectionStillActive, "ElectionStillActive"},
	{ErrNoVotesCast, "NoVotesCast"},
}

// Kind returns the stable name of a business-rule error, or "" for nil and
// for anything else (storage faults, context errors).
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
