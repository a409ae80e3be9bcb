package memory

import (
	"context"
	"sync"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps ledgers in process memory. Contents are lost on restart.
// Each user's ledger has its own lock, so users never wait on each other.
type Store struct {
	users sync.Map // int64 -> *userLedger
}

type userLedger struct {
	mu  sync.RWMutex
	txs []core.Transaction
}

func New() *Store {
	return &Store{}
}

func (s *Store) ledgerFor(userID int64) *userLedger {
	if l, ok := s.users.Load(userID); ok {
		return l.(*userLedger)
	}
	l, _ := s.users.LoadOrStore(userID, &userLedger{})
	return l.(*userLedger)
}

// Append stores the transaction after validating it.
func (s *Store) Append(_ context.Context, userID int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
	return nil
}

// AllFor returns a copy of the user's ledger.
func (s *Store) AllFor(_ context.Context, userID int64) ([]core.Transaction, error) {
	v, ok := s.users.Load(userID)
	if !ok {
		return []core.Transaction{}, nil
	}
	l := v.(*userLedger)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Transaction{}, l.txs...), nil
}

func (s *Store) Clear(_ context.Context, userID int64) error {
	v, ok := s.users.Load(userID)
	if !ok {
		return nil
	}
	l := v.(*userLedger)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = nil
	return nil
}
