// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the election ledger and tally engine.

A Service owns one election over a store.Store:

	svc, err := election.New(ctx, store.NewMemStore(), election.Config{})

# Lifecycle

Elections move setup → active → ended:

	AddCandidate / DeactivateCandidate / ActivateCandidate   (setup only)
	StartVoting(deadline)                                    setup → active
	EndVoting                                                active → ended (idempotent)
	ResetAll                                                 any → setup, ledger cleared

An optional deadline ends the election automatically; WatchDeadline runs the
check in the background.

# Voting

SubmitVote checks phase, registration, eligibility and candidate, then
inserts through Store.InsertVoteIfAbsent. Two concurrent submissions for one
voter yield exactly one receipt and one ErrAlreadyVoted. EndVoting waits for
in-flight submissions, so Winner sees every accepted vote.

# Results

  - Tally: per active candidate count and percentage, count desc then id asc
  - LiveLeader: provisional leader while active
  - Winner: final result, only once ended; ties go to the lowest id
  - Stats: totals, turnout, optional breakdown by voter attribute

# Errors

Business-rule failures are sentinel errors (ErrAlreadyVoted, ...). Kind maps
them to stable names for transports.
*/
package election
