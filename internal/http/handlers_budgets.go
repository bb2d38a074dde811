package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Period   string          `json:"period"`
	Year     int             `json:"year"`
}

func (req budgetRequest) budget(w http.ResponseWriter) (core.Budget, bool) {
	var b core.Budget

	if len(req.Amount) == 0 {
		badRequest(w, "amount is required")
		return b, false
	}
	if err := json.Unmarshal(req.Amount, &b.Amount); err != nil {
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:        "Invalid amount format",
			Received:     string(req.Amount),
			ExpectedType: "number",
		})
		return b, false
	}

	b.Category = req.Category
	b.Period = core.BudgetPeriod(req.Period)
	b.Year = req.Year
	return b, true
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list budgets", "error", err)
		internalError(w, "failed to list budgets")
		return
	}
	respondJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, ok := req.budget(w)
	if !ok {
		return
	}

	created, err := s.budgets.Create(r.Context(), b)
	if err != nil {
		s.respondBudgetError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "budget_id")
	if !ok {
		return
	}

	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, ok := req.budget(w)
	if !ok {
		return
	}

	updated, err := s.budgets.Update(r.Context(), id, b)
	if err != nil {
		if errors.Is(err, core.ErrBudgetNotFound) {
			notFound(w, "budget not found")
			return
		}
		s.respondBudgetError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleBudgetReport computes spend-vs-budget for the requested month and
// year, defaulting to the current ones.
func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrorResponse{
				Error:        "Invalid month format",
				Received:     raw,
				ExpectedType: "number",
			})
			return
		}
		month = parsed
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrorResponse{
				Error:        "Invalid year format",
				Received:     raw,
				ExpectedType: "number",
			})
			return
		}
		year = parsed
	}

	report, err := s.budgets.Report(r.Context(), month, year)
	if err != nil {
		if month < 1 || month > 12 {
			badRequest(w, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to build budget report", "month", month, "year", year, "error", err)
		internalError(w, "failed to build budget report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) respondBudgetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrDuplicateBudget):
		conflict(w, core.ErrDuplicateBudget.Error())
	case errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidYear):
		badRequest(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Budget operation failed", "error", err)
		internalError(w, "budget operation failed")
	}
}
