package services

import (
	"context"
	"errors"
	"fmt"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/log"
)

// Publisher announces committed transactions to other processes.
type Publisher interface {
	PublishTransactionCommitted(ctx context.Context, tx core.Transaction) error
}

// LedgerService orchestrates ledger operations across the store and the
// optional message bus.
type LedgerService struct {
	store     ledger.Store
	publisher Publisher
	logger    *log.Logger
	sl        *log.StructuredLogger
	closers   []func() error
}

// NewLedgerService wires a store with an optional publisher. A nil
// publisher disables fan-out.
func NewLedgerService(store ledger.Store, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
	}
}

// OnClose registers cleanup run by Close, in registration order.
func (s *LedgerService) OnClose(fn func() error) {
	if fn != nil {
		s.closers = append(s.closers, fn)
	}
}

// Commit appends tx to the user's ledger, then publishes it. A publish
// failure is logged and does not fail the commit.
func (s *LedgerService) Commit(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := s.store.Append(ctx, tx.UserID, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	s.sl.LogTransactionCommitted(ctx, tx.UserID, tx.ID, tx.Kind.String(), tx.Amount, tx.Mode, tx.Account)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishTransactionCommitted(ctx, tx); err != nil {
		s.sl.LogError(ctx, "Failed to publish committed transaction", err, log.OpPublish,
			log.NewFields().WithUser(tx.UserID, 0).WithTransaction(tx.ID, tx.Kind.String(), tx.Amount, tx.Mode, tx.Account))
	}
	return nil
}

// Ledger returns the user's transactions in insertion order.
func (s *LedgerService) Ledger(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := s.store.AllFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return txs, nil
}

// Clear removes every transaction of the user.
func (s *LedgerService) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger cleared", log.FieldUserID, userID, log.FieldOperation, log.OpClear)
	return nil
}

// Close runs the registered cleanup functions and joins their errors.
func (s *LedgerService) Close() error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
