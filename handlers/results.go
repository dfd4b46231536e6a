// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type ResultsHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewResultsHandler(svc *election.Service, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{svc: svc, cfg: cfg}
}

// Tally handles GET /results
func (h *ResultsHandler) Tally(w http.ResponseWriter, r *http.Request) {
	results, total, err := h.svc.TallyWithTotal(r.Context())
	if err != nil {
		writeServiceError(w, err, "tally")
		return
	}
	if results == nil {
		results = []models.TallyEntry{}
	}

	phase := h.svc.State(r.Context()).Phase
	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{
		Phase:       phase,
		TotalVotes:  total,
		Provisional: phase != models.PhaseEnded,
		Results:     results,
	})
}

// Leader handles GET /results/leader
func (h *ResultsHandler) Leader(w http.ResponseWriter, r *http.Request) {
	leader, err := h.svc.LiveLeader(r.Context())
	if err != nil {
		writeServiceError(w, err, "live leader")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, leader)
}

// Winner handles GET /results/winner
func (h *ResultsHandler) Winner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.svc.Winner(r.Context())
	if err != nil {
		writeServiceError(w, err, "winner")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, winner)
}

// Stats handles GET /stats?group_by=village
func (h *ResultsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	groupBy := strings.TrimSpace(r.URL.Query().Get("group_by"))

	stats, err := h.svc.Stats(r.Context(), groupBy)
	if err != nil {
		writeServiceError(w, err, "stats")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}
