// Package importer turns heterogeneous spreadsheet rows into normalized
// transaction records, given a user-confirmed column mapping and date format.
//
// The normalizer is deliberately lenient: malformed dates pass through
// unchanged and malformed amounts become zero-value expenses, so the user can
// see and fix bad rows in the preview. Strict validation happens when the
// batch is actually submitted to the ledger.
package importer

import (
	"fmt"

	"fintrack/internal/core"
)

// DefaultCategory labels rows whose source has no category column mapped.
const DefaultCategory = "Uncategorized"

// Row is a normalized import row, ready for batch submission. Date stays a
// string because lenient parsing may pass an unparseable raw value through.
type Row struct {
	AccountID   int64                `json:"account_id"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
}

// Normalize converts raw tabular rows into normalized records using the given
// mapping and date format. The preview path calls this on a prefix of the
// rows; there is no separate preview logic.
func Normalize(headers []string, rows [][]any, mapping Mapping, dateFormat string, accountID int64) []Row {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	cell := func(row []any, column string) any {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		parsed := ParseAmount(cell(row, mapping.Amount), mapping.Amount)

		category := cellString(cell(row, mapping.Category))
		if category == "" {
			category = DefaultCategory
		}

		out = append(out, Row{
			AccountID:   accountID,
			Date:        FormatDate(cell(row, mapping.Date), dateFormat),
			Description: cellString(cell(row, mapping.Description)),
			Amount:      parsed.Amount,
			Type:        parsed.Type,
			Category:    category,
		})
	}
	return out
}

// Preview runs Normalize on at most limit rows. Identical logic to the full
// batch path; only the row count differs.
func Preview(headers []string, rows [][]any, mapping Mapping, dateFormat string, accountID int64, limit int) []Row {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return Normalize(headers, rows, mapping, dateFormat, accountID)
}

// Transaction converts the row into a domain transaction, validating strictly:
// the date must be a real ISO date. This is the commit-time counterpart of
// the lenient preview parsing.
func (r Row) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	t := core.Transaction{
		AccountID:   r.AccountID,
		Date:        date,
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		Type:        r.Type,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
