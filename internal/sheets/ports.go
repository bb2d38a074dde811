// Package sheets defines the outbound port for the spreadsheet backup.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// TransactionWriter appends one transaction to the backup spreadsheet and
// returns a reference to the written range.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
