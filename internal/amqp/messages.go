package amqp

import (
	"encoding/json"
	"time"

	"ledgerbot/internal/core"
)

// TransactionCommittedMessage carries a full committed transaction so that
// consumers need no access to the bot's ledger backend.
type TransactionCommittedMessage struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Kind        string    `json:"kind"`
	Amount      float64   `json:"amount"`
	Mode        string    `json:"mode"`
	Account     string    `json:"account"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	Raw         string    `json:"raw,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// NewTransactionCommittedMessage wraps tx for publishing.
func NewTransactionCommittedMessage(tx core.Transaction) *TransactionCommittedMessage {
	return &TransactionCommittedMessage{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Kind:        tx.Kind.String(),
		Amount:      tx.Amount,
		Mode:        tx.Mode,
		Account:     tx.Account,
		Note:        tx.Note,
		CreatedAt:   tx.CreatedAt,
		Raw:         tx.Raw,
		PublishedAt: time.Now(),
	}
}

// Transaction converts the message back into a validated transaction.
func (m *TransactionCommittedMessage) Transaction() (core.Transaction, error) {
	kind, err := core.ParseKind(m.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      kind,
		Amount:    m.Amount,
		Mode:      m.Mode,
		Account:   m.Account,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
		Raw:       m.Raw,
	}
	return tx, tx.Validate()
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCommittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCommittedMessageFromJSON creates a message from JSON bytes
func TransactionCommittedMessageFromJSON(data []byte) (*TransactionCommittedMessage, error) {
	var msg TransactionCommittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
