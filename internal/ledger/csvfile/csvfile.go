// Package csvfile keeps each user's ledger in an append-only CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Header is the first line of every ledger file.
var Header = []string{"id", "type", "amount", "mode", "account", "created_at", "note", "raw"}

var ErrMalformedRow = errors.New("malformed ledger row")

// Store serializes access per user file; different users never share a lock.
type Store struct {
	dir   string
	locks sync.Map // int64 -> *sync.Mutex
}

// New stores files under dir, creating it when missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create csv data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) lockFor(userID int64) *sync.Mutex {
	if mu, ok := s.locks.Load(userID); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Path is the file holding the user's ledger.
func (s *Store) Path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+".csv")
}

func (s *Store) Append(_ context.Context, userID int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(s.Path(userID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(encode(tx)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger file: %w", err)
	}
	return f.Sync()
}

func (s *Store) AllFor(_ context.Context, userID int64) ([]core.Transaction, error) {
	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.Open(s.Path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	txs := []core.Transaction{}
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger file: %w", err)
		}
		if line == 1 {
			continue
		}
		tx, err := decode(userID, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *Store) Clear(_ context.Context, userID int64) error {
	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()
	if err := os.Remove(s.Path(userID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove ledger file: %w", err)
	}
	return nil
}

func encode(tx core.Transaction) []string {
	return []string{
		tx.ID,
		tx.Kind.String(),
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		tx.Mode,
		tx.Account,
		tx.CreatedAt.Format(time.RFC3339Nano),
		tx.Note,
		tx.Raw,
	}
}

func decode(userID int64, rec []string) (core.Transaction, error) {
	kind, err := core.ParseKind(rec[1])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	amount, err := strconv.ParseFloat(rec[2], 64)
	if err != nil || core.ValidateAmount(amount) != nil {
		return core.Transaction{}, fmt.Errorf("%w: amount %q", ErrMalformedRow, rec[2])
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec[5])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: created_at %q", ErrMalformedRow, rec[5])
	}
	return core.Transaction{
		ID:        rec[0],
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Mode:      rec[3],
		Account:   rec[4],
		CreatedAt: createdAt,
		Note:      rec[6],
		Raw:       rec[7],
	}, nil
}
