package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fintrack/internal/core"
)

// pathID parses the {id} path segment. A non-numeric id yields a structured
// 400 so the client sees what it sent and what was expected.
func pathID(w http.ResponseWriter, r *http.Request, label string) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid " + label + " format",
			Received:     raw,
			ExpectedType: "number",
		})
		return 0, false
	}
	return id, true
}

// decodeBody decodes the request body into dst, rejecting unknown syntax with
// a plain 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list accounts", "error", err)
		internalError(w, "failed to list accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account_id")
	if !ok {
		return
	}

	account, err := s.store.GetAccount(r.Context(), id)
	if errors.Is(err, core.ErrAccountNotFound) {
		notFound(w, "account not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to get account", "account_id", id, "error", err)
		internalError(w, "failed to get account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

type createAccountRequest struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	StartingBalance json.RawMessage `json:"starting_balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var balance core.Money
	if len(req.StartingBalance) > 0 {
		if err := json.Unmarshal(req.StartingBalance, &balance); err != nil {
			respondError(w, http.StatusBadRequest, ErrorResponse{
				Error:        "Invalid starting_balance format",
				Received:     string(req.StartingBalance),
				ExpectedType: "number",
			})
			return
		}
	}

	account := core.Account{
		Name:            req.Name,
		Type:            req.Type,
		StartingBalance: balance,
	}
	if err := account.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.CreateAccount(r.Context(), &account); err != nil {
		if errors.Is(err, core.ErrDuplicateAccount) {
			conflict(w, core.ErrDuplicateAccount.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create account", "name", account.Name, "error", err)
		internalError(w, "failed to create account")
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

type setBalanceRequest struct {
	Balance json.RawMessage `json:"balance"`
}

// handleSetAccountBalance overwrites the running balance directly. It is the
// escape hatch for reconciling against a bank statement; normal balance
// changes flow through transactions.
func (s *Server) handleSetAccountBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account_id")
	if !ok {
		return
	}

	var req setBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Balance) == 0 {
		badRequest(w, "balance is required")
		return
	}

	var balance core.Money
	if err := json.Unmarshal(req.Balance, &balance); err != nil {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid balance format",
			Received:     string(req.Balance),
			ExpectedType: "number",
		})
		return
	}

	if err := s.store.SetAccountBalance(r.Context(), id, balance.Cents); err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			notFound(w, "account not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to set account balance", "account_id", id, "error", err)
		internalError(w, "failed to set account balance")
		return
	}

	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to reload account", "account_id", id, "error", err)
		internalError(w, "failed to reload account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}
