// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

type VoterHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewVoterHandler(svc *election.Service, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{svc: svc, cfg: cfg}
}

// Register handles POST /voters
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	eligible := true
	if req.Eligible != nil {
		eligible = *req.Eligible
	}

	attrs := make(map[string]string, len(req.Attributes)+3)
	for k, v := range req.Attributes {
		attrs[k] = v
	}
	// Named fields win over the free-form map
	for k, v := range map[string]string{
		models.AttrGender:  req.Gender,
		models.AttrVillage: req.Village,
		models.AttrRegion:  req.Region,
	} {
		if v != "" {
			attrs[k] = v
		}
	}

	voter, err := h.svc.RegisterVoter(r.Context(), req.ExternalID, req.FullName, eligible, attrs)
	if err != nil {
		writeServiceError(w, err, "register voter")
		return
	}

	slog.Info("voter registered",
		"voter_hash", auth.HashVoterID(voter.ExternalID, h.cfg.AdminKeySalt),
		"eligible", voter.Eligible,
	)

	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// List handles GET /voters
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	voters, err := h.svc.ListVoters(r.Context())
	if err != nil {
		writeServiceError(w, err, "list voters")
		return
	}
	if voters == nil {
		voters = []models.Voter{}
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

// Get handles GET /voters/{id}
func (h *VoterHandler) Get(w http.ResponseWriter, r *http.Request) {
	voter, err := h.svc.LookupVoter(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "lookup voter")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voter)
}

// SetEligibility handles PATCH /voters/{id}/eligibility
func (h *VoterHandler) SetEligibility(w http.ResponseWriter, r *http.Request) {
	var req models.SetEligibilityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Eligible == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "eligible is required")
		return
	}

	voter, err := h.svc.SetVoterEligibility(r.Context(), r.PathValue("id"), *req.Eligible)
	if err != nil {
		writeServiceError(w, err, "set eligibility")
		return
	}

	slog.Info("voter eligibility changed",
		"voter_hash", auth.HashVoterID(voter.ExternalID, h.cfg.AdminKeySalt),
		"eligible", voter.Eligible,
	)

	middleware.JSONResponse(w, http.StatusOK, voter)
}
