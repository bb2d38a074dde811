package importer

import (
	"testing"

	"fintrack/internal/core"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		column    string
		wantCents int64
		wantType  core.TransactionType
	}{
		{name: "positive string", raw: "45.67", column: "Amount", wantCents: 4567, wantType: core.TypeIncome},
		{name: "negative string", raw: "-89.99", column: "Amount", wantCents: 8999, wantType: core.TypeExpense},
		{name: "parentheses negative", raw: "(120.00)", column: "Amount", wantCents: 12000, wantType: core.TypeExpense},
		{name: "currency symbol", raw: "$45.67", column: "Amount", wantCents: 4567, wantType: core.TypeIncome},
		{name: "euro symbol", raw: "€45.67", column: "Amount", wantCents: 4567, wantType: core.TypeIncome},
		{name: "thousands separator", raw: "1,250.00", column: "Amount", wantCents: 125000, wantType: core.TypeIncome},
		{name: "credit column forces income", raw: "1,250.00", column: "Credit Amount", wantCents: 125000, wantType: core.TypeIncome},
		{name: "debit column forces expense", raw: "50.00", column: "Debit", wantCents: 5000, wantType: core.TypeExpense},
		{name: "credit column overrides sign", raw: "-30.00", column: "Credit", wantCents: 3000, wantType: core.TypeIncome},
		{name: "numeric cell positive", raw: float64(12.5), column: "Amount", wantCents: 1250, wantType: core.TypeIncome},
		{name: "numeric cell negative", raw: float64(-12.5), column: "Amount", wantCents: 1250, wantType: core.TypeExpense},
		{name: "unparseable falls back to zero expense", raw: "garbage", column: "Amount", wantCents: 0, wantType: core.TypeExpense},
		{name: "nil falls back to zero expense", raw: nil, column: "Amount", wantCents: 0, wantType: core.TypeExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw, tt.column)
			if got.Amount.Cents != tt.wantCents {
				t.Errorf("ParseAmount(%v, %q) cents = %d, want %d", tt.raw, tt.column, got.Amount.Cents, tt.wantCents)
			}
			if got.Type != tt.wantType {
				t.Errorf("ParseAmount(%v, %q) type = %s, want %s", tt.raw, tt.column, got.Type, tt.wantType)
			}
		})
	}
}
