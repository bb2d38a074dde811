package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BudgetStatus is one row of a budget report: how much of the budget the
// matching transactions consumed inside the reporting window.
type BudgetStatus struct {
	Budget   core.Budget `json:"budget"`
	Spent    core.Money  `json:"spent"`
	Percent  float64     `json:"percent"`
	BarWidth int         `json:"bar_width"`
}

type BudgetService struct {
	store *storage.SQLiteRepository
}

func NewBudgetService(store *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{store: store}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.Year == 0 {
		b.Year = time.Now().Year()
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.CreateBudget(ctx, &b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, id int64, b core.Budget) (core.Budget, error) {
	b.ID = id
	if b.Year == 0 {
		b.Year = time.Now().Year()
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// Report computes spend-vs-budget for every budget. Monthly budgets count
// transactions in the selected month and year; annual budgets count
// transactions in the budget's own year. Spent sums the magnitude of every
// matching-category transaction regardless of type, matching the tracked
// behavior of the original report.
func (s *BudgetService) Report(ctx context.Context, month, year int) ([]BudgetStatus, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		var spent int64
		for _, t := range transactions {
			if t.Category != b.Category {
				continue
			}
			if !inWindow(b, t, month, year) {
				continue
			}
			spent += t.Amount.Cents
		}

		status := BudgetStatus{
			Budget: b,
			Spent:  core.Money{Cents: spent},
		}
		if b.Amount.Cents > 0 {
			status.Percent = 100 * float64(spent) / float64(b.Amount.Cents)
		}
		// Display clamp only: Percent stays unclamped for callers that need it.
		status.BarWidth = int(status.Percent)
		if status.BarWidth > 100 {
			status.BarWidth = 100
		}
		if status.BarWidth < 0 {
			status.BarWidth = 0
		}
		report = append(report, status)
	}
	return report, nil
}

func inWindow(b core.Budget, t core.Transaction, month, year int) bool {
	switch b.Period {
	case core.PeriodMonthly:
		return int(t.Date.Time.Month()) == month && t.Date.Time.Year() == year
	case core.PeriodAnnual:
		return t.Date.Time.Year() == b.Year
	default:
		return false
	}
}
