// Package redisstore keeps each user's ledger in one Redis list.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/log"
)

var _ ledger.Store = (*Store)(nil)

// Store appends JSON records with RPUSH, so LRANGE returns them in
// insertion order.
type Store struct {
	client *redis.Client
	logger *log.Logger
}

// record is the stored JSON form of a transaction.
type record struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	Mode      string    `json:"mode"`
	Account   string    `json:"account"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	Raw       string    `json:"raw,omitempty"`
}

// New connects to the server at url (redis://[:password@]host:port/db).
func New(ctx context.Context, url string, logger *log.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{client: client, logger: logger.WithComponent(log.ComponentStorage)}
}

// Key is the list holding the user's ledger.
func Key(userID int64) string {
	return fmt.Sprintf("ledger:%d:tx", userID)
}

func (s *Store) Append(ctx context.Context, userID int64, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	b, err := encode(tx)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, Key(userID), b).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", Key(userID), err)
	}
	s.logger.DebugContext(ctx, "Transaction saved to Redis", log.FieldTxID, tx.ID, log.FieldUserID, userID)
	return nil
}

func (s *Store) AllFor(ctx context.Context, userID int64) ([]core.Transaction, error) {
	items, err := s.client.LRange(ctx, Key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", Key(userID), err)
	}
	txs := make([]core.Transaction, 0, len(items))
	for i, item := range items {
		tx, err := decode(userID, []byte(item))
		if err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", Key(userID), i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", Key(userID), err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func encode(tx core.Transaction) ([]byte, error) {
	b, err := json.Marshal(record{
		ID:        tx.ID,
		Kind:      tx.Kind.String(),
		Amount:    tx.Amount,
		Mode:      tx.Mode,
		Account:   tx.Account,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt,
		Raw:       tx.Raw,
	})
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return b, nil
}

func decode(userID int64, b []byte) (core.Transaction, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(r.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:        r.ID,
		UserID:    userID,
		Kind:      kind,
		Amount:    r.Amount,
		Mode:      r.Mode,
		Account:   r.Account,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
		Raw:       r.Raw,
	}, nil
}
