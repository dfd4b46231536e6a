// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a struct over the election service and config:

  - VoterHandler: Voter registry (register, lookup, eligibility)
  - CandidateHandler: Candidate directory (add, deactivate, activate)
  - ElectionHandler: Lifecycle (status, start, end, reset)
  - VotingHandler: Vote submission and has-voted checks
  - ResultsHandler: Tally, live leader, winner and turnout stats

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(svc, cfg)

# Lifecycle

Elections progress through three phases: setup → active → ended

	POST /candidates          → Add (setup only)
	POST /election/start      → Start (optional deadline)
	POST /election/end        → End (idempotent)
	POST /election/reset      → Reset (clears the ledger, back to setup)

Registry, candidate and lifecycle writes require the X-Admin-Key header;
the router applies the guard.

# Voting Flow

	POST /votes               → SubmitVote (returns a receipt)
	GET  /votes/{voterId}     → HasVoted

Voter ids and client IPs are only logged as salted hashes.

# Errors

Business-rule failures are returned as JSON with a stable kind:

	{"error":"Conflict","message":"voter has already voted","kind":"AlreadyVoted"}

StatusForError maps kinds to status codes. Storage faults become a 500 with
no detail; the cause is logged.
*/
package handlers
