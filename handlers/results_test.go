// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestTally(t *testing.T) {
	svc, candidates := setupActiveElection(t)
	handler := NewResultsHandler(svc, testutil.GetTestConfig())

	testutil.CastTestVote(t, svc, testutil.VoterID(1), candidates[0].ID)
	testutil.CastTestVote(t, svc, testutil.VoterID(2), candidates[0].ID)

	req := httptest.NewRequest("GET", "/results", nil)
	w := httptest.NewRecorder()
	handler.Tally(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.TallyResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Phase != models.PhaseActive || !resp.Provisional {
		t.Errorf("Expected provisional active tally, got phase=%s provisional=%v", resp.Phase, resp.Provisional)
	}
	if resp.TotalVotes != 2 {
		t.Errorf("Expected 2 votes, got %d", resp.TotalVotes)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Count != 2 || resp.Results[0].Percentage != 100 {
		t.Errorf("Unexpected leader entry: %+v", resp.Results[0])
	}
	if resp.Results[1].Count != 0 || resp.Results[1].Percentage != 0 {
		t.Errorf("Unexpected trailing entry: %+v", resp.Results[1])
	}
}

func TestLeaderAndWinner(t *testing.T) {
	svc, candidates := setupActiveElection(t)
	handler := NewResultsHandler(svc, testutil.GetTestConfig())

	// No votes yet
	w := httptest.NewRecorder()
	handler.Leader(w, httptest.NewRequest("GET", "/results/leader", nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	testutil.CastTestVote(t, svc, testutil.VoterID(1), candidates[1].ID)

	w = httptest.NewRecorder()
	handler.Leader(w, httptest.NewRequest("GET", "/results/leader", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var leader models.Leader
	testutil.AssertJSON(t, w, &leader)
	if leader.CandidateID != candidates[1].ID || !leader.Provisional {
		t.Errorf("Unexpected leader: %+v", leader)
	}

	// Winner is refused while voting is open
	w = httptest.NewRecorder()
	handler.Winner(w, httptest.NewRequest("GET", "/results/winner", nil))
	testutil.AssertStatus(t, w, http.StatusConflict)
	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	if errResp.Kind != "ElectionStillActive" {
		t.Errorf("Expected kind ElectionStillActive, got %s", errResp.Kind)
	}

	if _, err := svc.EndVoting(context.Background()); err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	handler.Winner(w, httptest.NewRequest("GET", "/results/winner", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var winner models.Leader
	testutil.AssertJSON(t, w, &winner)
	if winner.CandidateID != candidates[1].ID || winner.Provisional {
		t.Errorf("Unexpected winner: %+v", winner)
	}
	if winner.TotalVotes != 1 || winner.Percentage != 100 {
		t.Errorf("Unexpected winner totals: %+v", winner)
	}
}

func TestStats(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.SetupTestStore(t), nil)
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(1), "Alice", map[string]string{models.AttrVillage: "Asante"})
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(2), "Kofi", map[string]string{models.AttrVillage: "Asante"})
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(3), "Ama", map[string]string{models.AttrVillage: "Bono"})
	testutil.RegisterTestVoter(t, svc, testutil.VoterID(4), "Yaw", nil)
	c := testutil.AddTestCandidate(t, svc, "Candidate A")
	testutil.StartTestElection(t, svc)
	testutil.CastTestVote(t, svc, testutil.VoterID(1), c.ID)
	testutil.CastTestVote(t, svc, testutil.VoterID(3), c.ID)

	handler := NewResultsHandler(svc, testutil.GetTestConfig())

	t.Run("totals only", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Stats(w, httptest.NewRequest("GET", "/stats", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var stats models.Stats
		testutil.AssertJSON(t, w, &stats)
		if stats.TotalVotes != 2 || stats.TotalEligible != 4 || stats.Turnout != 50 {
			t.Errorf("Unexpected totals: %+v", stats)
		}
		if len(stats.Breakdown) != 0 {
			t.Errorf("Expected no breakdown, got %+v", stats.Breakdown)
		}
	})

	t.Run("grouped by village", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Stats(w, httptest.NewRequest("GET", "/stats?group_by=village", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var stats models.Stats
		testutil.AssertJSON(t, w, &stats)
		want := map[string]models.GroupStats{
			"Asante":      {Group: "Asante", Votes: 1, Eligible: 2, Turnout: 50},
			"Bono":        {Group: "Bono", Votes: 1, Eligible: 1, Turnout: 100},
			"unspecified": {Group: "unspecified", Votes: 0, Eligible: 1, Turnout: 0},
		}
		if len(stats.Breakdown) != len(want) {
			t.Fatalf("Expected %d groups, got %+v", len(want), stats.Breakdown)
		}
		for _, g := range stats.Breakdown {
			if g != want[g.Group] {
				t.Errorf("Group %s = %+v, want %+v", g.Group, g, want[g.Group])
			}
		}
	})
}
