// Package storage is the SQLite-backed ledger store. All writes that pair a
// balance change with a transaction row go through WithinTx so they commit or
// roll back as one unit.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// AccountRef is a minimal account reference used in not-found error details.
type AccountRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the store is reachable, for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithinTx runs fn inside a single database transaction. A non-nil error from
// fn rolls everything back, leaving the store exactly as it was.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(q *TxQueries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&TxQueries{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TxQueries exposes the queries available inside a unit of work.
type TxQueries struct {
	tx *sql.Tx
}

func (q *TxQueries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return scanAccount(q.tx.QueryRowContext(ctx, accountSelect+` WHERE id = ?`, id))
}

// AdjustBalance applies a signed cents delta to the account's current balance.
func (q *TxQueries) AdjustBalance(ctx context.Context, accountID, deltaCents int64) error {
	res, err := q.tx.ExecContext(ctx,
		`UPDATE accounts SET current_balance_cents = current_balance_cents + ? WHERE id = ?`,
		deltaCents, accountID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust balance rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (q *TxQueries) InsertTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := q.tx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, date, category, amount_cents, description, type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.Date.ISO(), t.Category, t.Amount.Cents, t.Description, string(t.Type))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert transaction id: %w", err)
	}
	t.ID = id
	return nil
}

func (q *TxQueries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.tx.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id))
}

func (q *TxQueries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.tx.ExecContext(ctx,
		`UPDATE transactions
		 SET account_id = ?, date = ?, category = ?, amount_cents = ?, description = ?, type = ?, sheet_synced = 0
		 WHERE id = ?`,
		t.AccountID, t.Date.ISO(), t.Category, t.Amount.Cents, t.Description, string(t.Type), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

func (q *TxQueries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

const accountSelect = `SELECT id, name, type, starting_balance_cents, current_balance_cents, created_at FROM accounts`

const transactionSelect = `SELECT id, account_id, date, category, amount_cents, description, type FROM transactions`

// CreateAccount inserts a new account with current balance equal to the
// starting balance, filling in the generated ID and creation time.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a *core.Account) error {
	a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	a.CurrentBalance = a.StartingBalance
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, type, starting_balance_cents, current_balance_cents, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.Type, a.StartingBalance.Cents, a.CurrentBalance.Cents, a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateAccount
		}
		return fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create account id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, accountSelect+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, accountSelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListAccountRefs returns id/name pairs for every account, used to enrich
// account-not-found errors with the set of valid targets.
func (r *SQLiteRepository) ListAccountRefs(ctx context.Context) ([]AccountRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list account refs: %w", err)
	}
	defer rows.Close()

	var refs []AccountRef
	for rows.Next() {
		var ref AccountRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan account ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// SetAccountBalance overwrites the current balance directly. This bypasses
// balance derivation on purpose: it is the manual correction escape hatch.
func (r *SQLiteRepository) SetAccountBalance(ctx context.Context, id, cents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET current_balance_cents = ? WHERE id = ?`, cents, id)
	if err != nil {
		return fmt.Errorf("set account balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set account balance rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(r.db.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, transactionSelect+` ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents, period, year) VALUES (?, ?, ?, ?)`,
		b.Category, b.Amount.Cents, string(b.Period), b.Year)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateBudget
		}
		return fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create budget id: %w", err)
	}
	b.ID = id
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, period, year FROM budgets ORDER BY year DESC, period ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			period string
		)
		if err := rows.Scan(&b.ID, &b.Category, &b.Amount.Cents, &period, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Period = core.BudgetPeriod(period)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, amount_cents = ?, period = ?, year = ? WHERE id = ?`,
		b.Category, b.Amount.Cents, string(b.Period), b.Year, b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateBudget
		}
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrBudgetNotFound
	}
	return nil
}

// ListUnsynced returns transactions not yet mirrored to the backup sheet.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		transactionSelect+` WHERE sheet_synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) MarkSheetSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sheet_synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark sheet synced: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a         core.Account
		createdAt string
	)
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.StartingBalance.Cents, &a.CurrentBalance.Cents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.CreatedAt = parseStoredTime(createdAt)
	return a, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
		typeStr string
	)
	err := row.Scan(&t.ID, &t.AccountID, &dateStr, &t.Category, &t.Amount.Cents, &t.Description, &typeStr)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typeStr)
	if d, perr := core.ParseDate(dateStr); perr == nil {
		t.Date = d
	}
	return t, nil
}

// parseStoredTime handles both RFC3339 (written by this code) and SQLite's
// CURRENT_TIMESTAMP format.
func parseStoredTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
