// Package report derives day and account views from a ledger and renders
// them as chat text.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/core"
)

const (
	NoEntriesToday   = "No entries for today."
	noEntriesAccount = "No entries found for account %s."

	// noteWidth is the fixed width of the note column.
	noteWidth = 16
)

// Summary is a filtered, ordered slice of a ledger with its totals.
type Summary struct {
	Title   string
	Empty   string // text shown when Entries is empty
	Entries []core.Transaction
	Income  decimal.Decimal
	Expense decimal.Decimal

	showNet bool
}

// Option tweaks how a summary renders.
type Option func(*Summary)

// WithNet adds a net total line below the two per-kind totals.
func WithNet() Option {
	return func(s *Summary) { s.showNet = true }
}

// DayView keeps the entries created on the same calendar day as now, in
// now's location, stable-sorted by account.
func DayView(txs []core.Transaction, now time.Time, opts ...Option) Summary {
	y, m, d := now.Date()
	loc := now.Location()
	var today []core.Transaction
	for _, tx := range txs {
		ty, tm, td := tx.CreatedAt.In(loc).Date()
		if ty == y && tm == m && td == d {
			today = append(today, tx)
		}
	}
	return newSummary(fmt.Sprintf("Today's summary (%s)", now.Format("Mon 02/01/2006")), NoEntriesToday, today, opts)
}

// AccountView keeps the entries booked on account, regardless of date.
func AccountView(txs []core.Transaction, account string, opts ...Option) Summary {
	var matching []core.Transaction
	for _, tx := range txs {
		if tx.Account == account {
			matching = append(matching, tx)
		}
	}
	return newSummary(fmt.Sprintf("Entries for account %s", account), fmt.Sprintf(noEntriesAccount, account), matching, opts)
}

// AllView keeps every entry.
func AllView(txs []core.Transaction, opts ...Option) Summary {
	return newSummary("All entries", "No entries yet.", append([]core.Transaction(nil), txs...), opts)
}

func newSummary(title, empty string, entries []core.Transaction, opts []Option) Summary {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Account < entries[j].Account
	})
	income, expense := Totals(entries)
	s := Summary{
		Title:   title,
		Empty:   empty,
		Entries: entries,
		Income:  income,
		Expense: expense,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Totals sums income and expense amounts separately. Both are non-negative.
func Totals(txs []core.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount).Abs()
		if tx.Kind == core.Income {
			income = income.Add(amount)
		} else {
			expense = expense.Add(amount)
		}
	}
	return income, expense
}

// Net is income minus expense.
func (s Summary) Net() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// Render produces the chat text of the summary.
func (s Summary) Render() string {
	if len(s.Entries) == 0 {
		return s.Empty
	}
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	for i, tx := range s.Entries {
		b.WriteString(Line(i+1, tx))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total income: %s\n", s.Income.StringFixed(2))
	fmt.Fprintf(&b, "Total expense: %s", s.Expense.StringFixed(2))
	if s.showNet {
		net := s.Net()
		sign := "+"
		if net.IsNegative() {
			sign = "-"
		}
		fmt.Fprintf(&b, "\nNet total: %s%s", sign, net.Abs().StringFixed(2))
	}
	return b.String()
}

// Line renders one numbered entry:
//
//	index. timestamp | account | amount | mode | note
func Line(index int, tx core.Transaction) string {
	amount := tx.Kind.Sign() + decimal.NewFromFloat(tx.Amount).StringFixed(2)
	return fmt.Sprintf("%d. %s | %-2s | %10s | %-6s | %s",
		index, tx.Timestamp(), tx.Account, amount, tx.Mode, fitNote(tx.Note))
}

// fitNote pads or truncates the note to noteWidth runes.
func fitNote(note string) string {
	r := []rune(note)
	if len(r) > noteWidth {
		return string(r[:noteWidth-1]) + "…"
	}
	return note + strings.Repeat(" ", noteWidth-len(r))
}
