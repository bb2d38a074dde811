package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestAccount(t *testing.T, repo *SQLiteRepository, name string, startingCents int64) core.Account {
	t.Helper()
	a := core.Account{Name: name, Type: "checking", StartingBalance: core.Money{Cents: startingCents}}
	if err := repo.CreateAccount(context.Background(), &a); err != nil {
		t.Fatalf("CreateAccount(%s): %v", name, err)
	}
	return a
}

func TestCreateAndGetAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := newTestAccount(t, repo, "Checking", 10000)
	if created.ID == 0 {
		t.Fatal("CreateAccount did not set ID")
	}
	if created.CurrentBalance.Cents != 10000 {
		t.Errorf("current balance = %d, want starting balance 10000", created.CurrentBalance.Cents)
	}

	got, err := repo.GetAccount(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Name != "Checking" || got.StartingBalance.Cents != 10000 || got.CurrentBalance.Cents != 10000 {
		t.Errorf("unexpected account: %+v", got)
	}

	if _, err := repo.GetAccount(ctx, 999); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("GetAccount(999) error = %v, want ErrAccountNotFound", err)
	}
}

func TestCreateAccountDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	newTestAccount(t, repo, "Savings", 0)

	dup := core.Account{Name: "Savings", Type: "savings"}
	if err := repo.CreateAccount(context.Background(), &dup); !errors.Is(err, core.ErrDuplicateAccount) {
		t.Errorf("duplicate name error = %v, want ErrDuplicateAccount", err)
	}
}

func TestListAccountsSortedByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	newTestAccount(t, repo, "Zeta", 0)
	newTestAccount(t, repo, "Alpha", 0)

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Name != "Alpha" || accounts[1].Name != "Zeta" {
		t.Errorf("unexpected order: %+v", accounts)
	}

	refs, err := repo.ListAccountRefs(ctx)
	if err != nil {
		t.Fatalf("ListAccountRefs: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "Alpha" {
		t.Errorf("unexpected refs: %+v", refs)
	}
}

func TestSetAccountBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Checking", 5000)

	if err := repo.SetAccountBalance(ctx, a.ID, 123456); err != nil {
		t.Fatalf("SetAccountBalance: %v", err)
	}
	got, err := repo.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.CurrentBalance.Cents != 123456 {
		t.Errorf("balance = %d, want 123456", got.CurrentBalance.Cents)
	}
	if got.StartingBalance.Cents != 5000 {
		t.Errorf("starting balance changed to %d", got.StartingBalance.Cents)
	}

	if err := repo.SetAccountBalance(ctx, 999, 0); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("missing account error = %v, want ErrAccountNotFound", err)
	}
}

func TestWithinTxRollback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Checking", 10000)

	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(q *TxQueries) error {
		if err := q.AdjustBalance(ctx, a.ID, -2500); err != nil {
			return err
		}
		tr := core.Transaction{
			AccountID: a.ID,
			Date:      core.NewDate(2024, 3, 1),
			Category:  "Misc",
			Amount:    core.Money{Cents: 2500},
			Type:      core.TypeExpense,
		}
		if err := q.InsertTransaction(ctx, &tr); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	got, err := repo.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.CurrentBalance.Cents != 10000 {
		t.Errorf("balance after rollback = %d, want 10000", got.CurrentBalance.Cents)
	}
	transactions, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("transactions after rollback = %d, want 0", len(transactions))
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Checking", 0)

	tr := core.Transaction{
		AccountID:   a.ID,
		Date:        core.NewDate(2024, 6, 15),
		Category:    "Groceries",
		Amount:      core.Money{Cents: 4599},
		Description: "Weekly shop",
		Type:        core.TypeExpense,
	}
	err := repo.WithinTx(ctx, func(q *TxQueries) error {
		return q.InsertTransaction(ctx, &tr)
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	if tr.ID == 0 {
		t.Fatal("InsertTransaction did not set ID")
	}

	got, err := repo.GetTransaction(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Date.ISO() != "2024-06-15" || got.Amount.Cents != 4599 || got.Type != core.TypeExpense {
		t.Errorf("unexpected transaction: %+v", got)
	}

	if _, err := repo.GetTransaction(ctx, 999); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("GetTransaction(999) error = %v, want ErrTransactionNotFound", err)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Checking", 0)

	dates := []core.Date{
		core.NewDate(2024, 1, 10),
		core.NewDate(2024, 3, 5),
		core.NewDate(2024, 2, 20),
	}
	for _, d := range dates {
		tr := core.Transaction{AccountID: a.ID, Date: d, Category: "Misc", Amount: core.Money{Cents: 100}, Type: core.TypeExpense}
		err := repo.WithinTx(ctx, func(q *TxQueries) error {
			return q.InsertTransaction(ctx, &tr)
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := []string{"2024-03-05", "2024-02-20", "2024-01-10"}
	if len(got) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(got), len(want))
	}
	for i, iso := range want {
		if got[i].Date.ISO() != iso {
			t.Errorf("position %d: date = %s, want %s", i, got[i].Date.ISO(), iso)
		}
	}
}

func TestDeleteCascadesWithAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Doomed", 0)

	tr := core.Transaction{AccountID: a.ID, Date: core.NewDate(2024, 1, 1), Category: "Misc", Amount: core.Money{Cents: 100}, Type: core.TypeExpense}
	err := repo.WithinTx(ctx, func(q *TxQueries) error {
		return q.InsertTransaction(ctx, &tr)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, a.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, tr.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("transaction survived account deletion: %v", err)
	}
}

func TestBudgetCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := core.Budget{Category: "Groceries", Amount: core.Money{Cents: 50000}, Period: core.PeriodMonthly, Year: 2024}
	if err := repo.CreateBudget(ctx, &b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("CreateBudget did not set ID")
	}

	dup := core.Budget{Category: "Groceries", Amount: core.Money{Cents: 60000}, Period: core.PeriodMonthly, Year: 2024}
	if err := repo.CreateBudget(ctx, &dup); !errors.Is(err, core.ErrDuplicateBudget) {
		t.Errorf("duplicate budget error = %v, want ErrDuplicateBudget", err)
	}

	// Same category, different period is a distinct budget.
	annual := core.Budget{Category: "Groceries", Amount: core.Money{Cents: 600000}, Period: core.PeriodAnnual, Year: 2024}
	if err := repo.CreateBudget(ctx, &annual); err != nil {
		t.Fatalf("CreateBudget annual: %v", err)
	}

	b.Amount.Cents = 55000
	if err := repo.UpdateBudget(ctx, b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}

	missing := b
	missing.ID = 999
	if err := repo.UpdateBudget(ctx, missing); !errors.Is(err, core.ErrBudgetNotFound) {
		t.Errorf("missing budget error = %v, want ErrBudgetNotFound", err)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("got %d budgets, want 2", len(budgets))
	}
}

func TestSheetSyncTracking(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := newTestAccount(t, repo, "Checking", 0)

	tr := core.Transaction{AccountID: a.ID, Date: core.NewDate(2024, 5, 1), Category: "Misc", Amount: core.Money{Cents: 100}, Type: core.TypeIncome}
	err := repo.WithinTx(ctx, func(q *TxQueries) error {
		return q.InsertTransaction(ctx, &tr)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tr.ID {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	if err := repo.MarkSheetSynced(ctx, tr.ID); err != nil {
		t.Fatalf("MarkSheetSynced: %v", err)
	}
	pending, err = repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}

	// Editing a synced transaction queues it again.
	tr.Description = "edited"
	err = repo.WithinTx(ctx, func(q *TxQueries) error {
		return q.UpdateTransaction(ctx, tr)
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, err = repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnsynced: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending after edit = %d, want 1", len(pending))
	}
}
