package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"fintrack/internal/storage"
)

// ErrorResponse is the JSON error envelope. Error is always set; the other
// fields carry structured detail for validation and referential failures.
type ErrorResponse struct {
	Error             string               `json:"error"`
	Received          any                  `json:"received,omitempty"`
	ExpectedType      string               `json:"expectedType,omitempty"`
	RequestedID       any                  `json:"requestedId,omitempty"`
	AvailableAccounts []storage.AccountRef `json:"availableAccounts,omitempty"`
	Row               *int                 `json:"row,omitempty"`
	Details           string               `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, resp ErrorResponse) {
	respondJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func notFound(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusNotFound, ErrorResponse{Error: msg})
}

func conflict(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusConflict, ErrorResponse{Error: msg})
}

// internalError hides the failure cause from the client; details are logged
// at the call site.
func internalError(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusInternalServerError, ErrorResponse{Error: msg})
}
