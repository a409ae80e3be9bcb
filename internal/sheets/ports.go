package sheets

import (
	"context"

	"ledgerbot/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionWriter appends one row per committed transaction. Appending
	// a transaction whose id is already present returns the existing row
	// reference.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

// Header is the first row of a mirror sheet.
var Header = []string{"id", "user_id", "type", "amount", "mode", "account", "timestamp", "note"}

// Row renders tx in Header order.
func Row(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.UserID,
		tx.Kind.String(),
		tx.SignedAmount(),
		tx.Mode,
		tx.Account,
		tx.Timestamp(),
		tx.Note,
	}
}
