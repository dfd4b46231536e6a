// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
)

func NewRouter(svc *election.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(svc, cfg)
	candidateHandler := handlers.NewCandidateHandler(svc, cfg)
	electionHandler := handlers.NewElectionHandler(svc, cfg)
	votingHandler := handlers.NewVotingHandler(svc, cfg)
	resultsHandler := handlers.NewResultsHandler(svc, cfg)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.ElectionName, cfg.AdminKeySalt, h))
	}
	public := middleware.WithLogging

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voter registry (admin)
	mux.HandleFunc("POST /voters", admin(voterHandler.Register))
	mux.HandleFunc("GET /voters", admin(voterHandler.List))
	mux.HandleFunc("GET /voters/{id}", admin(voterHandler.Get))
	mux.HandleFunc("PATCH /voters/{id}/eligibility", admin(voterHandler.SetEligibility))

	// Candidate directory
	mux.HandleFunc("GET /candidates", public(candidateHandler.List))
	mux.HandleFunc("GET /candidates/{id}", public(candidateHandler.Get))
	mux.HandleFunc("POST /candidates", admin(candidateHandler.Add))
	mux.HandleFunc("POST /candidates/{id}/deactivate", admin(candidateHandler.Deactivate))
	mux.HandleFunc("POST /candidates/{id}/activate", admin(candidateHandler.Activate))

	// Lifecycle
	mux.HandleFunc("GET /election", public(electionHandler.Status))
	mux.HandleFunc("POST /election/start", admin(electionHandler.Start))
	mux.HandleFunc("POST /election/end", admin(electionHandler.End))
	mux.HandleFunc("POST /election/reset", admin(electionHandler.Reset))

	// Voting (public)
	mux.HandleFunc("POST /votes", public(votingHandler.SubmitVote))
	mux.HandleFunc("GET /votes/{voterId}", public(votingHandler.HasVoted))

	// Results (public)
	mux.HandleFunc("GET /results", public(resultsHandler.Tally))
	mux.HandleFunc("GET /results/leader", public(resultsHandler.Leader))
	mux.HandleFunc("GET /results/winner", public(resultsHandler.Winner))
	mux.HandleFunc("GET /stats", public(resultsHandler.Stats))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
