package report

import (
	"strings"
	"testing"
	"time"

	"ledgerbot/internal/core"
)

var now = time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)

func entry(kind core.Kind, amount float64, account, note string, at time.Time) core.Transaction {
	return core.NewTransaction(1, kind, amount, "Cash", account, note, at, "")
}

func TestDayViewFiltersSortsAndTotals(t *testing.T) {
	txs := []core.Transaction{
		entry(core.Expense, 100, "S", "lunch", now.Add(-2*time.Hour)),
		entry(core.Expense, 20, "A", "", now.Add(-time.Hour)),
		entry(core.Income, 500, "A", "refund", now.Add(-30*time.Minute)),
		entry(core.Expense, 999, "A", "yesterday", now.Add(-24*time.Hour)),
		entry(core.Expense, 5, "C", "last year", now.AddDate(-1, 0, 0)),
	}
	s := DayView(txs, now)
	if len(s.Entries) != 3 {
		t.Fatalf("expected 3 entries for today, got %d", len(s.Entries))
	}
	gotAccounts := []string{s.Entries[0].Account, s.Entries[1].Account, s.Entries[2].Account}
	if strings.Join(gotAccounts, "") != "AAS" {
		t.Fatalf("expected sort by account, got %v", gotAccounts)
	}
	if s.Entries[0].Amount != 20 || s.Entries[1].Amount != 500 {
		t.Fatalf("sort must keep insertion order within an account: %+v", s.Entries)
	}
	if s.Income.StringFixed(2) != "500.00" || s.Expense.StringFixed(2) != "120.00" {
		t.Fatalf("unexpected totals income=%s expense=%s", s.Income, s.Expense)
	}
	out := s.Render()
	for _, want := range []string{"Total income: 500.00", "Total expense: 120.00", "1. ", "3. "} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Net total") {
		t.Fatalf("net total must be opt-in")
	}
}

func TestDayViewEmpty(t *testing.T) {
	if got := DayView(nil, now).Render(); got != "No entries for today." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestAccountView(t *testing.T) {
	txs := []core.Transaction{
		entry(core.Expense, 100, "A", "", now),
		entry(core.Income, 50, "S", "", now),
	}
	s := AccountView(txs, "A")
	if len(s.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(s.Entries))
	}
	if s.Expense.StringFixed(2) != "100.00" || s.Income.StringFixed(2) != "0.00" {
		t.Fatalf("unexpected totals income=%s expense=%s", s.Income, s.Expense)
	}
	lines := strings.Split(s.Render(), "\n")
	count := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "1. ") || strings.HasPrefix(l, "2. ") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one entry line, got %d:\n%s", count, s.Render())
	}

	if got := AccountView(txs, "O").Render(); got != "No entries found for account O." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTotalsNonNegativeAndNet(t *testing.T) {
	txs := []core.Transaction{
		entry(core.Expense, 0.1, "A", "", now),
		entry(core.Expense, 0.2, "A", "", now),
		entry(core.Income, 0.25, "A", "", now),
	}
	s := AllView(txs, WithNet())
	if s.Expense.StringFixed(2) != "0.30" {
		t.Fatalf("expected 0.30, got %s", s.Expense.StringFixed(2))
	}
	if s.Income.IsNegative() || s.Expense.IsNegative() {
		t.Fatalf("totals must be non-negative")
	}
	if !strings.Contains(s.Render(), "Net total: -0.05") {
		t.Fatalf("expected net line:\n%s", s.Render())
	}
}

func TestLineFormat(t *testing.T) {
	tx := entry(core.Expense, 250, "A", "", time.Date(2025, 6, 2, 9, 5, 0, 0, time.UTC))
	got := Line(1, tx)
	want := "1. Mon 02/06/2025 09:05 | A  |    -250.00 | Cash   | " + strings.Repeat(" ", noteWidth)
	if got != want {
		t.Fatalf("unexpected line\n got %q\nwant %q", got, want)
	}

	long := entry(core.Income, 1, "S", "a very long note that keeps going", now)
	if !strings.HasSuffix(Line(2, long), "…") {
		t.Fatalf("long note should be truncated: %q", Line(2, long))
	}
}
