// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type ElectionHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewElectionHandler(svc *election.Service, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{svc: svc, cfg: cfg}
}

// Status handles GET /election
func (h *ElectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		writeServiceError(w, err, "election status")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, status)
}

// Start handles POST /election/start; the body (with an optional deadline) may be empty
func (h *ElectionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartVotingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	state, err := h.svc.StartVoting(r.Context(), req.Deadline)
	if err != nil {
		writeServiceError(w, err, "start voting")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}

// End handles POST /election/end
func (h *ElectionHandler) End(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.EndVoting(r.Context())
	if err != nil {
		writeServiceError(w, err, "end voting")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}

// Reset handles POST /election/reset
func (h *ElectionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.svc.ResetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, "reset")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		Cleared: cleared,
		Phase:   models.PhaseSetup,
	})
}
