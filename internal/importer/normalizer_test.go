package importer

import (
	"testing"

	"fintrack/internal/core"
)

func TestNormalize(t *testing.T) {
	headers := []string{"Date", "Description", "Amount", "Category"}
	mapping := Mapping{Date: "Date", Description: "Description", Amount: "Amount", Category: "Category"}
	rows := [][]any{
		{"12/31/2023", "Salary", "1500.00", "Income"},
		{"01/15/2024", "Rent", "(950.00)", ""},
		{"notadate", "Mystery", "garbage", "Misc"},
	}

	got := Normalize(headers, rows, mapping, "MM/DD/YYYY", 7)
	if len(got) != 3 {
		t.Fatalf("Normalize returned %d rows, want 3", len(got))
	}

	first := got[0]
	if first.AccountID != 7 {
		t.Errorf("AccountID = %d, want 7", first.AccountID)
	}
	if first.Date != "2023-12-31" {
		t.Errorf("Date = %q, want 2023-12-31", first.Date)
	}
	if first.Amount.Cents != 150000 || first.Type != core.TypeIncome {
		t.Errorf("amount = %d/%s, want 150000/income", first.Amount.Cents, first.Type)
	}
	if first.Category != "Income" {
		t.Errorf("Category = %q, want Income", first.Category)
	}

	second := got[1]
	if second.Amount.Cents != 95000 || second.Type != core.TypeExpense {
		t.Errorf("parenthesized amount = %d/%s, want 95000/expense", second.Amount.Cents, second.Type)
	}
	if second.Category != DefaultCategory {
		t.Errorf("empty category = %q, want %q", second.Category, DefaultCategory)
	}

	// Lenient parsing keeps broken rows visible instead of failing.
	third := got[2]
	if third.Date != "notadate" {
		t.Errorf("unparseable date = %q, want notadate", third.Date)
	}
	if third.Amount.Cents != 0 || third.Type != core.TypeExpense {
		t.Errorf("unparseable amount = %d/%s, want 0/expense", third.Amount.Cents, third.Type)
	}
}

func TestNormalizeShortRow(t *testing.T) {
	headers := []string{"Date", "Description", "Amount"}
	mapping := Mapping{Date: "Date", Description: "Description", Amount: "Amount"}
	rows := [][]any{{"2024-01-01"}}

	got := Normalize(headers, rows, mapping, "YYYY-MM-DD", 1)
	if len(got) != 1 {
		t.Fatalf("Normalize returned %d rows, want 1", len(got))
	}
	if got[0].Amount.Cents != 0 || got[0].Type != core.TypeExpense {
		t.Errorf("missing amount cell = %d/%s, want 0/expense", got[0].Amount.Cents, got[0].Type)
	}
	if got[0].Category != DefaultCategory {
		t.Errorf("missing category = %q, want %q", got[0].Category, DefaultCategory)
	}
}

func TestPreviewLimit(t *testing.T) {
	headers := []string{"Date", "Amount"}
	mapping := Mapping{Date: "Date", Amount: "Amount"}
	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{"2024-01-01", "10.00"}
	}

	if got := Preview(headers, rows, mapping, "YYYY-MM-DD", 1, 10); len(got) != 10 {
		t.Errorf("Preview with limit 10 returned %d rows", len(got))
	}
	if got := Preview(headers, rows, mapping, "YYYY-MM-DD", 1, 0); len(got) != 25 {
		t.Errorf("Preview with limit 0 returned %d rows, want all 25", len(got))
	}
}

func TestRowTransaction(t *testing.T) {
	row := Row{
		AccountID:   3,
		Date:        "2024-06-15",
		Description: "Coffee",
		Amount:      core.Money{Cents: 450},
		Type:        core.TypeExpense,
		Category:    "Dining",
	}

	tr, err := row.Transaction()
	if err != nil {
		t.Fatalf("Transaction(): %v", err)
	}
	if tr.Date.ISO() != "2024-06-15" || tr.Amount.Cents != 450 || tr.Type != core.TypeExpense {
		t.Errorf("unexpected transaction: %+v", tr)
	}

	// The strict path rejects what lenient preview let through.
	bad := row
	bad.Date = "notadate"
	if _, err := bad.Transaction(); err == nil {
		t.Error("unparseable date should fail strict conversion")
	}

	empty := row
	empty.Category = ""
	if _, err := empty.Transaction(); err == nil {
		t.Error("empty category should fail strict conversion")
	}
}
