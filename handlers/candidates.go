// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type CandidateHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewCandidateHandler(svc *election.Service, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{svc: svc, cfg: cfg}
}

// List handles GET /candidates; ?all=true includes deactivated candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "true"

	candidates, err := h.svc.ListCandidates(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, err, "list candidates")
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Get handles GET /candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateIDFromPath(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	candidate, err := h.svc.LookupCandidate(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get candidate")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// Add handles POST /candidates
func (h *CandidateHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, err := h.svc.AddCandidate(r.Context(), req.DisplayName, req.Party)
	if err != nil {
		writeServiceError(w, err, "add candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// Deactivate handles POST /candidates/{id}/deactivate
func (h *CandidateHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Activate handles POST /candidates/{id}/activate
func (h *CandidateHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *CandidateHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := candidateIDFromPath(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid candidate id")
		return
	}

	var (
		candidate models.Candidate
		err       error
	)
	if active {
		candidate, err = h.svc.ActivateCandidate(r.Context(), id)
	} else {
		candidate, err = h.svc.DeactivateCandidate(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err, "set candidate active")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidate)
}
