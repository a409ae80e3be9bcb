// Package ledger defines the per-user transaction store and its backends.
package ledger

import (
	"context"

	"ledgerbot/internal/core"
)

// Ports for ledger backends.
type (
	// Appender adds a committed transaction to the end of a user's ledger.
	Appender interface {
		Append(ctx context.Context, userID int64, tx core.Transaction) error
	}

	// Reader returns a user's whole ledger in insertion order. Unknown users
	// have an empty ledger.
	Reader interface {
		AllFor(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	// Clearer empties a user's ledger.
	Clearer interface {
		Clear(ctx context.Context, userID int64) error
	}

	Store interface {
		Appender
		Reader
		Clearer
	}
)
