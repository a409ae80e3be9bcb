// Package dialog implements the multi-step conversation that turns an
// amount message and a few button taps into a committed transaction.
package dialog

import (
	"time"

	"ledgerbot/internal/core"
)

// EmptyNote is the note text that stands for "no note".
const EmptyNote = "-"

// Entry is a transaction under construction. Fields are filled in dialogue order.
type Entry struct {
	Kind      core.Kind
	Amount    float64
	Raw       string
	Mode      string
	Account   string
	Note      string
	CreatedAt time.Time
}

// Outcome describes what a single Apply call did.
type Outcome struct {
	Matched   bool
	From      State
	To        State
	Replaced  bool  // a fresh amount replaced the outstanding entry
	Err       error // amount parse failure, state unchanged
	Committed *core.Transaction
}

// Builder drives one user's dialogue. It is not safe for concurrent use;
// callers serialize events per user.
type Builder struct {
	userID  int64
	catalog core.Catalog
	now     func() time.Time

	state State
	entry *Entry
}

// NewBuilder returns a builder waiting for an amount.
func NewBuilder(userID int64, catalog core.Catalog, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{
		userID:  userID,
		catalog: catalog,
		now:     now,
		state:   AwaitingAmount,
	}
}

func (b *Builder) State() State {
	return b.state
}

// Pending returns a copy of the entry under construction, or nil.
func (b *Builder) Pending() *Entry {
	if b.entry == nil {
		return nil
	}
	e := *b.entry
	return &e
}

// Apply feeds one action into the state machine.
func (b *Builder) Apply(a Action) Outcome {
	out := Outcome{From: b.state, To: b.state}
	if a == nil || b.state.Terminal() {
		return out
	}
	to, ok := next(b.state, a)
	if !ok {
		return out
	}

	switch act := a.(type) {
	case Cancel:
		b.entry = nil

	case EnterText:
		switch b.state {
		case AwaitingAmount:
			parsed, err := core.ParseAmount(act.Text)
			if err != nil {
				out.Err = err
				return out
			}
			b.start(parsed)

		case AwaitingMode, AwaitingAccount:
			parsed, err := core.ParseAmount(act.Text)
			if err != nil {
				return out
			}
			b.start(parsed)
			out.Replaced = true

		case AwaitingNote:
			note := act.Text
			if note == EmptyNote {
				note = ""
			}
			b.entry.Note = note
			tx := core.NewTransaction(b.userID, b.entry.Kind, b.entry.Amount, b.entry.Mode,
				b.entry.Account, b.entry.Note, b.entry.CreatedAt, b.entry.Raw)
			if err := tx.Validate(); err != nil {
				out.Err = err
				return out
			}
			out.Committed = &tx
			b.entry = nil
		}

	case SelectMode:
		if !b.catalog.HasMode(act.Value) {
			return out
		}
		b.entry.Mode = act.Value

	case SelectAccount:
		if !b.catalog.HasAccount(act.Value) {
			return out
		}
		b.entry.Account = act.Value
		b.entry.CreatedAt = b.now()
	}

	b.state = to
	out.To = to
	out.Matched = true
	return out
}

func (b *Builder) start(p core.ParsedAmount) {
	b.entry = &Entry{Kind: p.Kind, Amount: p.Amount, Raw: p.Raw}
}
