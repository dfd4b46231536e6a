// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/middleware"
)

// statusByKind maps business-rule error kinds to HTTP status codes
var statusByKind = map[string]int{
	"InvalidIdFormat":     http.StatusBadRequest,
	"InvalidName":         http.StatusBadRequest,
	"InvalidDeadline":     http.StatusBadRequest,
	"InvalidCandidate":    http.StatusBadRequest,
	"VoterNotFound":       http.StatusNotFound,
	"CandidateNotFound":   http.StatusNotFound,
	"NoVotesCast":         http.StatusNotFound,
	"VoterNotRegistered":  http.StatusForbidden,
	"VoterNotEligible":    http.StatusForbidden,
	"DuplicateVoter":      http.StatusConflict,
	"AlreadyVoted":        http.StatusConflict,
	"ElectionNotInSetup":  http.StatusConflict,
	"NoCandidates":        http.StatusConflict,
	"AlreadyActive":       http.StatusConflict,
	"ElectionEnded":       http.StatusConflict,
	"VotingNotActive":     http.StatusConflict,
	"ElectionStillActive": http.StatusConflict,
}

// StatusForError returns the HTTP status for a service error
func StatusForError(err error) int {
	if status, ok := statusByKind[election.Kind(err)]; ok {
		return status
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError renders err; storage faults are logged and hidden
func writeServiceError(w http.ResponseWriter, err error, op string) {
	kind := election.Kind(err)
	status := StatusForError(err)
	if kind == "" {
		slog.Error("operation failed", "op", op, "error", err)
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	middleware.KindErrorResponse(w, status, kind, err.Error())
}

// candidateIDFromPath parses the {id} path value
func candidateIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
