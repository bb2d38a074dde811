// Package worker mirrors committed transactions to the backup spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SyncWorker copies transactions from SQLite to the backup sheet. It consumes
// queue messages for fresh writes and periodically scans for unsynced rows the
// queue missed.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.TransactionWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheets sheets.TransactionWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage backs up the transaction named by one queue message. The
// row is re-read from the database so the sheet always gets the latest edit,
// not whatever state the message was published against.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	transaction, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncToSheets(ctx, transaction)
}

// ProcessPending backs up transactions that never made it through the queue.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListUnsynced(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.syncToSheets(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction", "id", t.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the unsynced backlog once at worker startup.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.ProcessPending(ctx)
}

func (w *SyncWorker) syncToSheets(ctx context.Context, t core.Transaction) error {
	rowRef, err := w.sheets.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSheetSynced(ctx, t.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Synced transaction to sheet", "id", t.ID, "row", rowRef)
	return nil
}
