// Package services contains the application services that sit between the
// HTTP layer and the store: the ledger service keeps account balances
// consistent with the transaction set, the budget service computes
// spend-vs-budget reports.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SyncPublisher publishes transaction ids for the backup worker. A nil
// publisher disables backup without affecting ledger operations.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
}

// LedgerService maintains the invariant
//
//	current_balance == starting_balance + Σ signed(amount, type)
//
// across create, update, delete and batch import. Every operation pairs its
// balance adjustment with the row change inside one store transaction.
type LedgerService struct {
	store     *storage.SQLiteRepository
	publisher SyncPublisher
}

func NewLedgerService(store *storage.SQLiteRepository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// BatchRowError identifies the row that caused a batch import to roll back.
type BatchRowError struct {
	Index int
	Err   error
}

func (e *BatchRowError) Error() string {
	return fmt.Sprintf("transaction %d: %v", e.Index, e.Err)
}

func (e *BatchRowError) Unwrap() error {
	return e.Err
}

// Create inserts a transaction and credits or debits its account in one unit
// of work.
func (s *LedgerService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := s.store.WithinTx(ctx, func(q *storage.TxQueries) error {
		if _, err := q.GetAccount(ctx, t.AccountID); err != nil {
			return err
		}
		if err := q.AdjustBalance(ctx, t.AccountID, t.Signed()); err != nil {
			return err
		}
		return q.InsertTransaction(ctx, &t)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, t.ID)
	return t, nil
}

// Update rewrites a transaction and applies the delta between the old and new
// signed amounts, so an amount-only edit cannot double-count. When the
// transaction moves between accounts, the old account is debited by the old
// signed amount and the new account credited by the new one.
func (s *LedgerService) Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	t.ID = id
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := s.store.WithinTx(ctx, func(q *storage.TxQueries) error {
		prev, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		if prev.AccountID == t.AccountID {
			if delta := t.Signed() - prev.Signed(); delta != 0 {
				if err := q.AdjustBalance(ctx, t.AccountID, delta); err != nil {
					return err
				}
			}
		} else {
			if _, err := q.GetAccount(ctx, t.AccountID); err != nil {
				return err
			}
			if err := q.AdjustBalance(ctx, prev.AccountID, -prev.Signed()); err != nil {
				return err
			}
			if err := q.AdjustBalance(ctx, t.AccountID, t.Signed()); err != nil {
				return err
			}
		}

		return q.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, t.ID)
	return t, nil
}

// Delete reverses the transaction's signed amount from its account and
// removes the row, atomically.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	return s.store.WithinTx(ctx, func(q *storage.TxQueries) error {
		prev, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := q.AdjustBalance(ctx, prev.AccountID, -prev.Signed()); err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, id)
	})
}

// BatchCreate inserts all transactions as one unit. The first invalid row
// aborts the whole batch: nothing is persisted and no balance moves. Returns
// the number of inserted rows on success.
func (s *LedgerService) BatchCreate(ctx context.Context, transactions []core.Transaction) (int, error) {
	ids := make([]int64, 0, len(transactions))

	err := s.store.WithinTx(ctx, func(q *storage.TxQueries) error {
		for i := range transactions {
			t := &transactions[i]
			if err := t.Validate(); err != nil {
				return &BatchRowError{Index: i, Err: err}
			}
			if _, err := q.GetAccount(ctx, t.AccountID); err != nil {
				return &BatchRowError{Index: i, Err: err}
			}
			if err := q.AdjustBalance(ctx, t.AccountID, t.Signed()); err != nil {
				return &BatchRowError{Index: i, Err: err}
			}
			if err := q.InsertTransaction(ctx, t); err != nil {
				return &BatchRowError{Index: i, Err: err}
			}
			ids = append(ids, t.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.publishSync(ctx, id)
	}
	return len(ids), nil
}

// List returns all transactions, newest date first.
func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// publishSync hands the transaction to the backup queue. Failures are logged
// and never fail the ledger operation: the worker's periodic scan picks up
// rows the queue missed.
func (s *LedgerService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "transaction_id", id, "error", err)
	}
}
