package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// TimestampLayout renders the day name, the date and the time of a transaction.
const TimestampLayout = "Mon 02/01/2006 15:04"

type (
	Kind string

	// Transaction is a committed ledger entry. It is never modified after
	// it has been appended to a ledger.
	Transaction struct {
		ID        string
		UserID    int64
		Kind      Kind
		Amount    float64
		Mode      string
		Account   string
		Note      string
		CreatedAt time.Time
		Raw       string // amount text as typed by the user
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrEmptyMode     = errors.New("empty payment mode")
	ErrEmptyAccount  = errors.New("empty account")
	ErrZeroTimestamp = errors.New("timestamp cannot be zero")
	ErrMissingUser   = errors.New("missing user id")
	ErrMissingID     = errors.New("missing transaction id")
)

// ParseKind accepts the stored spelling of a kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// Sign returns "+" for income and "-" for expense.
func (k Kind) Sign() string {
	if k == Income {
		return "+"
	}
	return "-"
}

// NewTransaction assigns a fresh id to an otherwise complete transaction.
func NewTransaction(userID int64, kind Kind, amount float64, mode, account, note string, createdAt time.Time, raw string) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Mode:      mode,
		Account:   account,
		Note:      note,
		CreatedAt: createdAt,
		Raw:       raw,
	}
}

// Timestamp is the display form of CreatedAt.
func (t Transaction) Timestamp() string {
	return t.CreatedAt.Format(TimestampLayout)
}

// SignedAmount is positive for income and negative for expense.
func (t Transaction) SignedAmount() float64 {
	if t.Kind == Income {
		return t.Amount
	}
	return -t.Amount
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if t.UserID == 0 {
		return ErrMissingUser
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Mode) == "" {
		return ErrEmptyMode
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if t.CreatedAt.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}
