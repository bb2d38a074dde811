package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// transactionRequest keeps account_id, amount and date raw so a type mismatch
// can be reported back with the offending value instead of a generic decode
// error.
type transactionRequest struct {
	AccountID   json.RawMessage `json:"account_id"`
	Date        json.RawMessage `json:"date"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
}

func (req transactionRequest) transaction(w http.ResponseWriter) (core.Transaction, bool) {
	var t core.Transaction

	if len(req.AccountID) == 0 {
		badRequest(w, "account_id is required")
		return t, false
	}
	if err := json.Unmarshal(req.AccountID, &t.AccountID); err != nil {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid account_id format",
			Received:     string(req.AccountID),
			ExpectedType: "number",
		})
		return t, false
	}

	if len(req.Date) == 0 {
		badRequest(w, "date is required")
		return t, false
	}
	if err := json.Unmarshal(req.Date, &t.Date); err != nil {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid date format",
			Received:     string(req.Date),
			ExpectedType: "YYYY-MM-DD",
		})
		return t, false
	}

	if len(req.Amount) == 0 {
		badRequest(w, "amount is required")
		return t, false
	}
	if err := json.Unmarshal(req.Amount, &t.Amount); err != nil {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid amount format",
			Received:     string(req.Amount),
			ExpectedType: "number",
		})
		return t, false
	}

	t.Category = req.Category
	t.Description = req.Description
	t.Type = core.TransactionType(req.Type)
	return t, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.ledger.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		internalError(w, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, ok := req.transaction(w)
	if !ok {
		return
	}

	created, err := s.ledger.Create(r.Context(), t)
	if err != nil {
		s.respondLedgerError(w, r, err, t.AccountID)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transaction_id")
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, ok := req.transaction(w)
	if !ok {
		return
	}

	updated, err := s.ledger.Update(r.Context(), id, t)
	if err != nil {
		if errors.Is(err, core.ErrTransactionNotFound) {
			notFound(w, "transaction not found")
			return
		}
		s.respondLedgerError(w, r, err, t.AccountID)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "transaction_id")
	if !ok {
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrTransactionNotFound) {
			notFound(w, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "transaction_id", id, "error", err)
		internalError(w, "failed to delete transaction")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

type batchRequest struct {
	Transactions []importer.Row `json:"transactions"`
}

type batchResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// handleBatchCreateTransactions imports normalized rows as one atomic unit:
// any invalid row rejects the whole batch and reports its index.
func (s *Server) handleBatchCreateTransactions(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Transactions) == 0 {
		badRequest(w, "transactions array is required")
		return
	}

	transactions := make([]core.Transaction, 0, len(req.Transactions))
	for i, row := range req.Transactions {
		t, err := row.Transaction()
		if err != nil {
			index := i
			respondError(w, http.StatusBadRequest, ErrorResponse{
				Error:   fmt.Sprintf("transaction %d: %v", i, err),
				Row:     &index,
				Details: err.Error(),
			})
			return
		}
		transactions = append(transactions, t)
	}

	count, err := s.ledger.BatchCreate(r.Context(), transactions)
	if err != nil {
		var rowErr *services.BatchRowError
		if errors.As(err, &rowErr) {
			resp := ErrorResponse{
				Error:   rowErr.Error(),
				Row:     &rowErr.Index,
				Details: rowErr.Err.Error(),
			}
			if errors.Is(rowErr.Err, core.ErrAccountNotFound) {
				resp.RequestedID = transactions[rowErr.Index].AccountID
				resp.AvailableAccounts = s.accountRefs(r)
			}
			respondError(w, http.StatusBadRequest, resp)
			return
		}
		slog.ErrorContext(r.Context(), "Batch import failed", "rows", len(transactions), "error", err)
		internalError(w, "failed to import transactions")
		return
	}

	respondJSON(w, http.StatusCreated, batchResponse{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("Successfully imported %d transactions", count),
	})
}

// respondLedgerError maps ledger failures to API errors. A missing account is
// a client error and includes the known accounts so the caller can fix the id.
func (s *Server) respondLedgerError(w http.ResponseWriter, r *http.Request, err error, accountID int64) {
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:             "account not found",
			RequestedID:       accountID,
			AvailableAccounts: s.accountRefs(r),
		})
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrDescriptionTooLong):
		badRequest(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Ledger operation failed", "error", err)
		internalError(w, "ledger operation failed")
	}
}

func (s *Server) accountRefs(r *http.Request) []storage.AccountRef {
	refs, err := s.store.ListAccountRefs(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list account refs", "error", err)
		return nil
	}
	return refs
}
