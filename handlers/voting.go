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

type VotingHandler struct {
	svc *election.Service
	cfg cliparse.Config
}

func NewVotingHandler(svc *election.Service, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{svc: svc, cfg: cfg}
}

// SubmitVote handles POST /votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	voterHash := auth.HashVoterID(req.VoterID, h.cfg.AdminKeySalt)
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)

	receipt, err := h.svc.SubmitVote(r.Context(), req.VoterID, req.CandidateID)
	if err != nil {
		if kind := election.Kind(err); kind != "" {
			slog.Info("vote rejected", "voter_hash", voterHash, "ip_hash", ipHash, "kind", kind)
		}
		writeServiceError(w, err, "submit vote")
		return
	}

	slog.Info("vote accepted",
		"voter_hash", voterHash,
		"ip_hash", ipHash,
		"receipt_id", receipt.ReceiptID,
	)

	middleware.JSONResponse(w, http.StatusCreated, receipt)
}

// HasVoted handles GET /votes/{voterId}
func (h *VotingHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voterId")

	voted, err := h.svc.HasVoted(r.Context(), voterID)
	if err != nil {
		writeServiceError(w, err, "has voted")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		VoterID:  voterID,
		HasVoted: voted,
	})
}
