// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestAddCandidate(t *testing.T) {
	svc := testutil.NewTestService(t, nil, nil)
	ctx := context.Background()

	a, err := svc.AddCandidate(ctx, "  Candidate A ", " Green ")
	if err != nil {
		t.Fatal(err)
	}
	if a.DisplayName != "Candidate A" || a.Party != "Green" || !a.Active {
		t.Errorf("AddCandidate() = %+v", a)
	}
	b := testutil.AddTestCandidate(t, svc, "Candidate B")
	if b.ID <= a.ID {
		t.Errorf("ids not increasing: %d then %d", a.ID, b.ID)
	}

	if _, err := svc.AddCandidate(ctx, " ", ""); !errors.Is(err, election.ErrInvalidName) {
		t.Errorf("blank name: error = %v, want ErrInvalidName", err)
	}
}

func TestCandidateMutations_OnlyInSetup(t *testing.T) {
	ctx := context.Background()

	for _, votes := range []int{0, 1, 3} {
		svc := testutil.NewTestService(t, nil, nil)
		c := testutil.AddTestCandidate(t, svc, "Candidate A")
		for i := 1; i <= votes; i++ {
			testutil.RegisterTestVoter(t, svc, testutil.VoterID(i), "Voter", nil)
		}
		testutil.StartTestElection(t, svc)
		for i := 1; i <= votes; i++ {
			testutil.CastTestVote(t, svc, testutil.VoterID(i), c.ID)
		}

		if _, err := svc.AddCandidate(ctx, "Late Entry", ""); !errors.Is(err, election.ErrElectionNotInSetup) {
			t.Errorf("%d votes, active: AddCandidate error = %v, want ErrElectionNotInSetup", votes, err)
		}
		if _, err := svc.DeactivateCandidate(ctx, c.ID); !errors.Is(err, election.ErrElectionNotInSetup) {
			t.Errorf("%d votes, active: DeactivateCandidate error = %v, want ErrElectionNotInSetup", votes, err)
		}

		if _, err := svc.EndVoting(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.AddCandidate(ctx, "Late Entry", ""); !errors.Is(err, election.ErrElectionNotInSetup) {
			t.Errorf("%d votes, ended: AddCandidate error = %v, want ErrElectionNotInSetup", votes, err)
		}
		if _, err := svc.ActivateCandidate(ctx, c.ID); !errors.Is(err, election.ErrElectionNotInSetup) {
			t.Errorf("%d votes, ended: ActivateCandidate error = %v, want ErrElectionNotInSetup", votes, err)
		}
	}
}

func TestDeactivateCandidate(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.SetupTestStore(t), nil)
	a := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.AddTestCandidate(t, svc, "Candidate B")
	ctx := context.Background()

	off, err := svc.DeactivateCandidate(ctx, a.ID)
	if err != nil || off.Active {
		t.Fatalf("DeactivateCandidate() = %+v, %v", off, err)
	}
	if _, err := svc.DeactivateCandidate(ctx, 999); !errors.Is(err, election.ErrCandidateNotFound) {
		t.Errorf("unknown candidate: error = %v, want ErrCandidateNotFound", err)
	}

	active, _ := svc.ListCandidates(ctx, false)
	all, _ := svc.ListCandidates(ctx, true)
	if len(active) != 1 || len(all) != 2 {
		t.Errorf("ListCandidates: %d active, %d total; want 1, 2", len(active), len(all))
	}

	on, err := svc.ActivateCandidate(ctx, a.ID)
	if err != nil || !on.Active {
		t.Errorf("ActivateCandidate() = %+v, %v", on, err)
	}
}

func TestLookupCandidate(t *testing.T) {
	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) {
			svc := testutil.NewTestService(t, s.open(t), nil)
			a := testutil.AddTestCandidate(t, svc, "Candidate A")
			ctx := context.Background()

			got, err := svc.LookupCandidate(ctx, a.ID)
			if err != nil || got.ID != a.ID || got.DisplayName != "Candidate A" {
				t.Fatalf("LookupCandidate() = %+v, %v", got, err)
			}

			// Deactivated candidates stay visible by id
			if _, err := svc.DeactivateCandidate(ctx, a.ID); err != nil {
				t.Fatal(err)
			}
			got, err = svc.LookupCandidate(ctx, a.ID)
			if err != nil || got.Active {
				t.Errorf("after deactivate: LookupCandidate() = %+v, %v", got, err)
			}

			if _, err := svc.LookupCandidate(ctx, 999); !errors.Is(err, election.ErrCandidateNotFound) {
				t.Errorf("unknown candidate: error = %v, want ErrCandidateNotFound", err)
			}
		})
	}
}
