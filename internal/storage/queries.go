package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	Seq       int64
	ID        string
	UserID    int64
	Kind      string
	Amount    float64
	Mode      string
	Account   string
	Note      string
	CreatedAt string
	Raw       string
}

const insertTransaction = `-- name: InsertTransaction :one
INSERT INTO transactions (id, user_id, kind, amount, mode, account, note, created_at, raw)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING seq
`

type InsertTransactionParams struct {
	ID        string
	UserID    int64
	Kind      string
	Amount    float64
	Mode      string
	Account   string
	Note      string
	CreatedAt string
	Raw       string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertTransaction,
		arg.ID,
		arg.UserID,
		arg.Kind,
		arg.Amount,
		arg.Mode,
		arg.Account,
		arg.Note,
		arg.CreatedAt,
		arg.Raw,
	)
	var seq int64
	err := row.Scan(&seq)
	return seq, err
}

const listTransactionsByUser = `-- name: ListTransactionsByUser :many
SELECT seq, id, user_id, kind, amount, mode, account, note, created_at, raw
FROM transactions
WHERE user_id = ?
ORDER BY seq
`

func (q *Queries) ListTransactionsByUser(ctx context.Context, userID int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.Seq,
			&i.ID,
			&i.UserID,
			&i.Kind,
			&i.Amount,
			&i.Mode,
			&i.Account,
			&i.Note,
			&i.CreatedAt,
			&i.Raw,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransactionsByUser = `-- name: DeleteTransactionsByUser :execrows
DELETE FROM transactions WHERE user_id = ?
`

func (q *Queries) DeleteTransactionsByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransactionsByUser, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTransactionsByUser = `-- name: CountTransactionsByUser :one
SELECT COUNT(*) FROM transactions WHERE user_id = ?
`

func (q *Queries) CountTransactionsByUser(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactionsByUser, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
