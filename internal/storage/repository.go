package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/log"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is a durable ledger.Store. Rows are read back in insert
// order through the autoincrement seq column.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.Appender
func (r *SQLiteRepository) Append(ctx context.Context, userID int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	seq, err := r.queries.InsertTransaction(ctx, InsertTransactionParams{
		ID:        tx.ID,
		UserID:    userID,
		Kind:      tx.Kind.String(),
		Amount:    tx.Amount,
		Mode:      tx.Mode,
		Account:   tx.Account,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339Nano),
		Raw:       tx.Raw,
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		"seq", seq,
		log.FieldTxID, tx.ID,
		log.FieldUserID, userID)
	return nil
}

// AllFor implements ledger.Reader
func (r *SQLiteRepository) AllFor(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.transaction()
		if err != nil {
			return nil, fmt.Errorf("decode transaction seq %d: %w", row.Seq, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Clear implements ledger.Clearer
func (r *SQLiteRepository) Clear(ctx context.Context, userID int64) error {
	n, err := r.queries.DeleteTransactionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	r.logger.DebugContext(ctx, "Ledger cleared in SQLite", log.FieldUserID, userID, "deleted", n)
	return nil
}

// Count returns the number of stored transactions of the user.
func (r *SQLiteRepository) Count(ctx context.Context, userID int64) (int64, error) {
	return r.queries.CountTransactionsByUser(ctx, userID)
}

func (row TransactionRow) transaction() (core.Transaction, error) {
	kind, err := core.ParseKind(row.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}
	return core.Transaction{
		ID:        row.ID,
		UserID:    row.UserID,
		Kind:      kind,
		Amount:    row.Amount,
		Mode:      row.Mode,
		Account:   row.Account,
		Note:      row.Note,
		CreatedAt: createdAt,
		Raw:       row.Raw,
	}, nil
}
