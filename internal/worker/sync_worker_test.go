package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeWriter struct {
	appended []core.Transaction
	err      error
}

func (f *fakeWriter) Append(_ context.Context, t core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, t)
	return "Sheet!A1:E1", nil
}

func setup(t *testing.T) (*storage.SQLiteRepository, core.Transaction) {
	t.Helper()
	store, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	a := core.Account{Name: "Checking", Type: "checking"}
	if err := store.CreateAccount(ctx, &a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	tr := core.Transaction{
		AccountID:   a.ID,
		Date:        core.NewDate(2024, 6, 15),
		Category:    "Groceries",
		Amount:      core.Money{Cents: 4500},
		Description: "Weekly shop",
		Type:        core.TypeExpense,
	}
	err = store.WithinTx(ctx, func(q *storage.TxQueries) error {
		return q.InsertTransaction(ctx, &tr)
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	return store, tr
}

func TestHandleSyncMessage(t *testing.T) {
	store, tr := setup(t)
	writer := &fakeWriter{}
	w := NewSyncWorker(store, writer, 10)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tr.ID)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(writer.appended) != 1 || writer.appended[0].ID != tr.ID {
		t.Fatalf("unexpected appended set: %+v", writer.appended)
	}

	pending, err := store.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	store, _ := setup(t)
	w := NewSyncWorker(store, &fakeWriter{}, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(999))
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("error = %v, want ErrTransactionNotFound", err)
	}
}

func TestProcessPendingSkipsFailedRows(t *testing.T) {
	store, tr := setup(t)
	writer := &fakeWriter{err: errors.New("sheet unavailable")}
	w := NewSyncWorker(store, writer, 10)
	ctx := context.Background()

	// Append failures leave the row pending for the next scan.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	pending, err := store.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tr.ID {
		t.Fatalf("row lost on append failure: %+v", pending)
	}

	writer.err = nil
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending retry: %v", err)
	}
	pending, err = store.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after retry = %d, want 0", len(pending))
	}
}
