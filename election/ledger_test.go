// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
	"github.com/danielhkuo/quickly-vote/testutil"
)

// stores runs a test against the in-memory and the SQLite store
var stores = []struct {
	name string
	open func(t *testing.T) store.Store
}{
	{"memory", func(t *testing.T) store.Store { return store.NewMemStore() }},
	{"sqlite", func(t *testing.T) store.Store { return testutil.SetupTestStore(t) }},
}

func TestSubmitVote_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewTestService(t, nil, nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	if _, err := svc.RegisterVoter(ctx, testutil.VoterID(2), "Kofi", false, nil); err != nil {
		t.Fatal(err)
	}
	a := testutil.AddTestCandidate(t, svc, "Candidate A")
	b := testutil.AddTestCandidate(t, svc, "Candidate B")
	if _, err := svc.DeactivateCandidate(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	// Setup: not active yet
	if _, err := svc.SubmitVote(ctx, testutil.VoterID(1), a.ID); !errors.Is(err, election.ErrVotingNotActive) {
		t.Errorf("vote in setup: error = %v, want ErrVotingNotActive", err)
	}

	testutil.StartTestElection(t, svc)

	tests := []struct {
		name        string
		voterID     string
		candidateID int64
		wantErr     error
	}{
		{"never registered", testutil.VoterID(4), a.ID, election.ErrVoterNotRegistered},
		{"not eligible", testutil.VoterID(2), a.ID, election.ErrVoterNotEligible},
		{"unknown candidate", testutil.VoterID(1), 999, election.ErrInvalidCandidate},
		{"inactive candidate", testutil.VoterID(1), b.ID, election.ErrInvalidCandidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SubmitVote(ctx, tt.voterID, tt.candidateID); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// None of the rejections created a vote
	for _, id := range []string{testutil.VoterID(1), testutil.VoterID(2), testutil.VoterID(4)} {
		voted, err := svc.HasVoted(ctx, id)
		if err != nil || voted {
			t.Errorf("HasVoted(%s) = %v, %v after rejection", id, voted, err)
		}
	}

	// Eligibility is evaluated at submission time
	if _, err := svc.SetVoterEligibility(ctx, testutil.VoterID(2), true); err != nil {
		t.Fatal(err)
	}
	testutil.CastTestVote(t, svc, testutil.VoterID(2), a.ID)

	if _, err := svc.EndVoting(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitVote(ctx, testutil.VoterID(1), a.ID); !errors.Is(err, election.ErrVotingNotActive) {
		t.Errorf("vote after end: error = %v, want ErrVotingNotActive", err)
	}
}

func TestSubmitVote_Receipt(t *testing.T) {
	clock := testutil.NewClock(start)
	svc := testutil.NewTestService(t, nil, clock)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", nil)
	c := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)

	r1 := testutil.CastTestVote(t, svc, testutil.VoterID(1), c.ID)
	if r1.VoterID != testutil.VoterID(1) || r1.CandidateID != c.ID || !r1.CastAt.Equal(start) || r1.ReceiptID == "" {
		t.Errorf("receipt = %+v", r1)
	}

	r2 := testutil.CastTestVote(t, svc, testutil.VoterID(2), c.ID)
	if r2.ReceiptID == r1.ReceiptID {
		t.Error("receipt ids must be unique")
	}
}

func TestSubmitVote_ConcurrentSameVoter(t *testing.T) {
	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) {
			svc := testutil.NewTestService(t, s.open(t), nil)
			testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
			a := testutil.AddTestCandidate(t, svc, "Candidate A")
			b := testutil.AddTestCandidate(t, svc, "Candidate B")
			testutil.StartTestElection(t, svc)

			const attempts = 25
			var ok, already atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					candidate := a.ID
					if i%2 == 1 {
						candidate = b.ID
					}
					_, err := svc.SubmitVote(context.Background(), testutil.VoterID(1), candidate)
					switch {
					case err == nil:
						ok.Add(1)
					case errors.Is(err, election.ErrAlreadyVoted):
						already.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(i)
			}
			wg.Wait()

			if ok.Load() != 1 || already.Load() != attempts-1 {
				t.Errorf("got %d successes and %d AlreadyVoted; want 1 and %d", ok.Load(), already.Load(), attempts-1)
			}
			_, total, err := svc.TallyWithTotal(context.Background())
			if err != nil || total != 1 {
				t.Errorf("total = %d, %v; want 1", total, err)
			}
		})
	}
}

func TestEndVoting_Barrier(t *testing.T) {
	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) {
			svc := testutil.NewTestService(t, s.open(t), nil)
			c := testutil.AddTestCandidate(t, svc, "Candidate A")
			const voters = 40
			for i := 1; i <= voters; i++ {
				testutil.RegisterTestVoter(t, svc, testutil.VoterID(i), "Voter", nil)
			}
			testutil.StartTestElection(t, svc)

			var accepted atomic.Int32
			var wg sync.WaitGroup
			for i := 1; i <= voters; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := svc.SubmitVote(context.Background(), testutil.VoterID(i), c.ID)
					switch {
					case err == nil:
						accepted.Add(1)
					case errors.Is(err, election.ErrVotingNotActive):
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(i)
			}

			if _, err := svc.EndVoting(context.Background()); err != nil {
				t.Fatal(err)
			}
			// Winner right after the transition already sees every accepted vote
			winner, werr := svc.Winner(context.Background())
			wg.Wait()

			n := int(accepted.Load())
			if n == 0 {
				if !errors.Is(werr, election.ErrNoVotesCast) {
					t.Errorf("no accepted votes: Winner error = %v", werr)
				}
				return
			}
			if werr != nil {
				t.Fatal(werr)
			}
			if winner.TotalVotes != n {
				t.Errorf("Winner saw %d votes, %d were accepted", winner.TotalVotes, n)
			}
		})
	}
}

func TestSubmitVote_CastAtMonotonic(t *testing.T) {
	clock := testutil.NewClock(start)
	svc := testutil.NewTestService(t, nil, clock)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", nil)
	c := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)

	first := testutil.CastTestVote(t, svc, testutil.VoterID(1), c.ID)
	clock.Advance(-30 * time.Second)
	second := testutil.CastTestVote(t, svc, testutil.VoterID(2), c.ID)

	if second.CastAt.Before(first.CastAt) {
		t.Errorf("castAt went backwards: %v then %v", first.CastAt, second.CastAt)
	}
}

// failingStore fails vote inserts with a storage fault
type failingStore struct {
	store.Store
	fail atomic.Bool
}

func (f *failingStore) InsertVoteIfAbsent(ctx context.Context, v models.Vote) (bool, error) {
	if f.fail.Load() {
		return false, errors.New("connection reset by peer")
	}
	return f.Store.InsertVoteIfAbsent(ctx, v)
}

func TestSubmitVote_StorageFault(t *testing.T) {
	st := &failingStore{Store: store.NewMemStore()}
	svc := testutil.NewTestService(t, st, nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	c := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)
	ctx := context.Background()

	st.fail.Store(true)
	_, err := svc.SubmitVote(ctx, testutil.VoterID(1), c.ID)
	if err == nil {
		t.Fatal("expected a storage error")
	}
	if kind := election.Kind(err); kind != "" {
		t.Errorf("storage fault reported as kind %q", kind)
	}

	// Nothing was written; the voter can still vote
	st.fail.Store(false)
	testutil.CastTestVote(t, svc, testutil.VoterID(1), c.ID)
}

func TestResetAll(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.SetupTestStore(t), nil)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		testutil.RegisterTestVoter(t, svc, testutil.VoterID(i), "Voter", nil)
	}
	a := testutil.AddTestCandidate(t, svc, "Candidate A")
	b := testutil.AddTestCandidate(t, svc, "Candidate B")
	testutil.StartTestElection(t, svc)
	testutil.CastTestVote(t, svc, testutil.VoterID(1), a.ID)
	testutil.CastTestVote(t, svc, testutil.VoterID(2), a.ID)
	testutil.CastTestVote(t, svc, testutil.VoterID(3), b.ID)

	cleared, err := svc.ResetAll(ctx)
	if err != nil || cleared != 3 {
		t.Fatalf("ResetAll() = %d, %v; want 3", cleared, err)
	}

	if svc.State(ctx).Phase != models.PhaseSetup {
		t.Errorf("phase after reset = %s", svc.State(ctx).Phase)
	}
	tally, total, err := svc.TallyWithTotal(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(tally) != 2 {
		t.Fatalf("tally after reset: total %d, %d entries", total, len(tally))
	}
	for _, e := range tally {
		if e.Count != 0 || e.Percentage != 0 {
			t.Errorf("entry after reset = %+v", e)
		}
	}

	voters, _ := svc.ListVoters(ctx)
	if len(voters) != 3 {
		t.Errorf("voters after reset = %d, want 3", len(voters))
	}
	for _, v := range voters {
		if !v.Eligible {
			t.Errorf("eligibility changed by reset: %+v", v)
		}
	}

	// The same voters can vote again in the next round
	testutil.StartTestElection(t, svc)
	testutil.CastTestVote(t, svc, testutil.VoterID(1), b.ID)
}

func TestIneligibleAfterVoting_KeepsVote(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.SetupTestStore(t), nil)
	ctx := context.Background()
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", nil)
	a := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)
	testutil.CastTestVote(t, svc, testutil.VoterID(1), a.ID)

	if _, err := svc.SetVoterEligibility(ctx, testutil.VoterID(1), false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.EndVoting(ctx); err != nil {
		t.Fatal(err)
	}

	w, err := svc.Winner(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if w.CandidateID != a.ID || w.Count != 1 || w.TotalVotes != 1 {
		t.Errorf("Winner() = %+v, want the vote still counted", w)
	}

	tally, total, err := svc.TallyWithTotal(ctx)
	if err != nil || total != 1 || tally[0].Count != 1 {
		t.Errorf("TallyWithTotal() = %+v, %d, %v", tally, total, err)
	}

	voted, err := svc.HasVoted(ctx, testutil.VoterID(1))
	if err != nil || !voted {
		t.Errorf("HasVoted() = %v, %v", voted, err)
	}

	stats, err := svc.Stats(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalVotes != 1 || stats.TotalEligible != 1 || stats.Turnout != 100 {
		t.Errorf("Stats() = %+v, want 1 vote of 1 eligible", stats)
	}
}

// gatedResetStore holds ResetVotes until release is closed
type gatedResetStore struct {
	store.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedResetStore) ResetVotes(ctx context.Context, state models.ElectionState) (int, error) {
	close(g.entered)
	<-g.release
	return g.Store.ResetVotes(ctx, state)
}

func TestResetAll_ConcurrentSubmissions(t *testing.T) {
	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) {
			st := &gatedResetStore{
				Store:   s.open(t),
				entered: make(chan struct{}),
				release: make(chan struct{}),
			}
			svc := testutil.NewTestService(t, st, nil)
			c := testutil.AddTestCandidate(t, svc, "Candidate A")
			const voters = 40
			for i := 1; i <= voters; i++ {
				testutil.RegisterTestVoter(t, svc, testutil.VoterID(i), "Voter", nil)
			}
			testutil.StartTestElection(t, svc)
			ctx := context.Background()

			var accepted, notActive atomic.Int32
			submit := func(i int, wg *sync.WaitGroup) {
				defer wg.Done()
				_, err := svc.SubmitVote(ctx, testutil.VoterID(i), c.ID)
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, election.ErrVotingNotActive):
					notActive.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}

			// First half is accepted before the reset begins
			var before sync.WaitGroup
			for i := 1; i <= voters/2; i++ {
				before.Add(1)
				go submit(i, &before)
			}
			before.Wait()

			type result struct {
				cleared int
				err     error
			}
			done := make(chan result, 1)
			go func() {
				n, err := svc.ResetAll(ctx)
				done <- result{n, err}
			}()
			<-st.entered

			// Second half arrives while the reset is in progress
			var during sync.WaitGroup
			for i := voters/2 + 1; i <= voters; i++ {
				during.Add(1)
				go submit(i, &during)
			}
			select {
			case <-done:
				t.Fatal("ResetAll returned before the store reset was released")
			case <-time.After(50 * time.Millisecond):
			}
			if got := accepted.Load(); got != voters/2 {
				t.Errorf("%d votes accepted while reset was in progress", int(got)-voters/2)
			}

			close(st.release)
			res := <-done
			during.Wait()

			if res.err != nil {
				t.Fatal(res.err)
			}
			if res.cleared != voters/2 {
				t.Errorf("cleared = %d, want %d", res.cleared, voters/2)
			}
			if int(accepted.Load()) != voters/2 || int(notActive.Load()) != voters/2 {
				t.Errorf("accepted %d, rejected %d; want %d each", accepted.Load(), notActive.Load(), voters/2)
			}

			_, remaining, err := svc.TallyWithTotal(ctx)
			if err != nil || remaining != 0 {
				t.Errorf("remaining votes = %d, %v; want 0", remaining, err)
			}
		})
	}
}

// overlapStore counts inserts that are in flight at the same time
type overlapStore struct {
	store.Store
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (o *overlapStore) InsertVoteIfAbsent(ctx context.Context, v models.Vote) (bool, error) {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}

	// Wait briefly for a second insert to overlap this one
	deadline := time.Now().Add(time.Second)
	for o.peak.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return o.Store.InsertVoteIfAbsent(ctx, v)
}

func TestSubmitVote_InsertsRunInParallel(t *testing.T) {
	st := &overlapStore{Store: store.NewMemStore()}
	svc := testutil.NewTestService(t, st, nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", nil)
	c := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)

	var wg sync.WaitGroup
	receipts := make([]models.Receipt, 2)
	for i := range receipts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.SubmitVote(context.Background(), testutil.VoterID(i+1), c.ID)
			if err != nil {
				t.Errorf("SubmitVote(%d): %v", i+1, err)
			}
			receipts[i] = r
		}(i)
	}
	wg.Wait()

	if st.peak.Load() < 2 {
		t.Error("inserts for different voters were serialized")
	}
	if receipts[0].ReceiptID == receipts[1].ReceiptID {
		t.Error("receipt ids must be unique")
	}
}
