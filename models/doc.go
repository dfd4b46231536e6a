// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterVoterRequest: external_id, full_name, eligible, gender, village, region, attributes
  - SetEligibilityRequest: eligible
  - AddCandidateRequest: display_name, party
  - StartVotingRequest: deadline (optional)
  - SubmitVoteRequest: voter_id, candidate_id

# Response Types

Types for JSON responses:

  - HasVotedResponse: voter_id, has_voted
  - TallyResponse: phase, total_votes, provisional, results
  - ResetResponse: cleared, phase
  - ErrorResponse: error, message, kind

# Domain Types

  - Candidate: roster entry with a stable numeric id
  - Voter: registered voter keyed by national identifier
  - Vote: ledger entry, one per voter
  - Receipt: what a voter gets back after voting
  - ElectionState / ElectionStatus: lifecycle phase and optional deadline
  - TallyEntry, Leader, Stats, GroupStats: derived read models

# Constants

Phases:

	PhaseSetup  = "setup"
	PhaseActive = "active"
	PhaseEnded  = "ended"

Grouping attributes:

	AttrGender  = "gender"
	AttrVillage = "village"
	AttrRegion  = "region"
*/
package models
