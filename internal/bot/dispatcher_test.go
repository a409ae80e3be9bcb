package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/dialog"
	"ledgerbot/internal/export"
	"ledgerbot/internal/ledger/memory"
	"ledgerbot/internal/report"
	"ledgerbot/internal/services"
)

const (
	testUser int64 = 1001
	testChat int64 = 5001
	testMsg        = 42
)

var testNow = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

func newTestDispatcher(t *testing.T) (*Dispatcher, *services.LedgerService) {
	t.Helper()
	svc := services.NewLedgerService(memory.New(), nil, nil)
	clock := func() time.Time { return testNow }
	return NewDispatcher(svc, core.DefaultCatalog(), clock, nil), svc
}

func text(d *Dispatcher, s string) []Reply {
	return d.Handle(context.Background(), TextEvent(testUser, testChat, s))
}

func tap(d *Dispatcher, payload string) []Reply {
	return d.Handle(context.Background(), CallbackEvent(testUser, testChat, testMsg, "cb-1", payload))
}

func command(d *Dispatcher, name, args string) []Reply {
	return d.Handle(context.Background(), CommandEvent(testUser, testChat, name, args))
}

func single(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) != 1 {
		t.Fatalf("expected 1 reply, got %d: %+v", len(replies), replies)
	}
	return replies[0]
}

// edited checks a callback answer: an ack followed by an in-place edit.
func edited(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) != 2 {
		t.Fatalf("expected ack and edit, got %d: %+v", len(replies), replies)
	}
	if !replies[0].AckOnly() || replies[0].CallbackID != "cb-1" {
		t.Errorf("first reply should be a bare ack, got %+v", replies[0])
	}
	if replies[1].EditMessageID != testMsg {
		t.Errorf("expected edit of message %d, got %+v", testMsg, replies[1])
	}
	return replies[1]
}

func TestDispatcher_ExpenseWithoutNote(t *testing.T) {
	d, svc := newTestDispatcher(t)

	r := single(t, text(d, "250"))
	if !strings.Contains(r.Text, "Expense of 250.00") {
		t.Errorf("unexpected mode prompt %q", r.Text)
	}
	if len(r.Buttons) != 2 || len(r.Buttons[0]) != 2 || r.Buttons[0][0].Payload != "mode:Cash" {
		t.Errorf("unexpected mode keyboard %+v", r.Buttons)
	}

	r = edited(t, tap(d, "mode:Cash"))
	if !strings.Contains(r.Text, "Select account") || len(r.Buttons[0]) != 4 {
		t.Errorf("unexpected account prompt %+v", r)
	}

	r = edited(t, tap(d, "acct:A"))
	if !strings.Contains(r.Text, "Send a note") || r.Buttons != nil {
		t.Errorf("unexpected note prompt %+v", r)
	}

	r = single(t, text(d, "-"))
	if r.Text != "✅ Entry saved: -250.00 | Cash | A" {
		t.Errorf("unexpected confirmation %q", r.Text)
	}

	txs, err := svc.Ledger(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Ledger() error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if tx.Kind != core.Expense || tx.Amount != 250 || tx.Mode != "Cash" || tx.Account != "A" || tx.Note != "" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if !tx.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", tx.CreatedAt, testNow)
	}
}

func TestDispatcher_IncomeWithNote(t *testing.T) {
	d, svc := newTestDispatcher(t)

	text(d, "+1000")
	tap(d, "mode:Online")
	tap(d, "acct:S")
	r := single(t, text(d, "salary"))
	if r.Text != "✅ Entry saved: +1000.00 | Online | S | salary" {
		t.Errorf("unexpected confirmation %q", r.Text)
	}

	txs, _ := svc.Ledger(context.Background(), testUser)
	if len(txs) != 1 || txs[0].Kind != core.Income || txs[0].Note != "salary" {
		t.Fatalf("unexpected ledger %+v", txs)
	}
}

func TestDispatcher_InvalidAmount(t *testing.T) {
	d, svc := newTestDispatcher(t)

	r := single(t, text(d, "abc"))
	for _, want := range []string{`"abc"`, "250", "+1000"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("reply %q should mention %s", r.Text, want)
		}
	}
	if r.Buttons != nil {
		t.Errorf("no keyboard expected, got %+v", r.Buttons)
	}

	b, _ := d.sessions.Peek(testUser)
	if b.State() != dialog.AwaitingAmount {
		t.Errorf("state = %s, want awaiting_amount", b.State())
	}
	if txs, _ := svc.Ledger(context.Background(), testUser); len(txs) != 0 {
		t.Errorf("ledger should be empty, got %d", len(txs))
	}
}

func TestDispatcher_OversizedAmountIsRejected(t *testing.T) {
	d, svc := newTestDispatcher(t)
	huge := "1" + strings.Repeat("0", 400)

	r := single(t, text(d, huge))
	if r.Buttons != nil || !strings.Contains(r.Text, "+1000") {
		t.Fatalf("expected the invalid amount reply, got %+v", r)
	}
	if txs, _ := svc.Ledger(context.Background(), testUser); len(txs) != 0 {
		t.Fatalf("nothing should be committed, got %+v", txs)
	}

	text(d, "12")
	tap(d, "mode:Cash")
	tap(d, "acct:A")
	text(d, "-")
	if got := single(t, command(d, CmdToday, "")).Text; !strings.Contains(got, "Total expense: 12.00") {
		t.Errorf("today = %q", got)
	}
}

func TestDispatcher_NoteIsKeptVerbatim(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
	}{
		{"padded text", "  lunch with Ana  ", "  lunch with Ana  "},
		{"padded dash", " - ", " - "},
		{"dash", "-", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, svc := newTestDispatcher(t)
			text(d, "40")
			tap(d, "mode:Cash")
			tap(d, "acct:O")
			text(d, tt.note)

			txs, _ := svc.Ledger(context.Background(), testUser)
			if len(txs) != 1 || txs[0].Note != tt.want {
				t.Fatalf("note = %+v, want %q", txs, tt.want)
			}
		})
	}
}

func TestDispatcher_EmptyLedgerCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if got := single(t, command(d, CmdToday, "")).Text; got != "No entries for today." {
		t.Errorf("today = %q", got)
	}
	for _, name := range []string{CmdCSV, CmdExport} {
		r := single(t, command(d, name, ""))
		if r.Text != MsgNoDataToExport || r.Document != nil {
			t.Errorf("%s = %+v", name, r)
		}
	}
}

type entrySpec struct {
	kind    core.Kind
	amount  float64
	mode    string
	account string
	note    string
}

// seed commits entries one minute apart starting at testNow.
func seed(t *testing.T, svc *services.LedgerService, specs ...entrySpec) {
	t.Helper()
	for i, s := range specs {
		tx := core.NewTransaction(testUser, s.kind, s.amount, s.mode, s.account, s.note,
			testNow.Add(time.Duration(i)*time.Minute), "")
		if err := svc.Commit(context.Background(), tx); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}
}

func TestDispatcher_FilterByAccount(t *testing.T) {
	d, svc := newTestDispatcher(t)
	seed(t, svc,
		entrySpec{core.Expense, 100, "Cash", "A", "lunch"},
		entrySpec{core.Income, 500, "Online", "S", ""},
		entrySpec{core.Expense, 50, "Online", "A", ""},
	)
	txs, _ := svc.Ledger(context.Background(), testUser)
	want := report.AccountView(txs, "A").Render()

	t.Run("command with account", func(t *testing.T) {
		r := single(t, command(d, CmdFilter, "A"))
		if r.Text != want {
			t.Errorf("got\n%s\nwant\n%s", r.Text, want)
		}
		if !strings.Contains(r.Text, "Total expense: 150.00") || !strings.Contains(r.Text, "Total income: 0.00") {
			t.Errorf("unexpected totals in\n%s", r.Text)
		}
	})

	t.Run("command without account shows buttons", func(t *testing.T) {
		r := single(t, command(d, CmdFilter, ""))
		if r.Text != MsgSelectFilter || len(r.Buttons) != 1 || r.Buttons[0][0].Payload != "filter_acct:A" {
			t.Errorf("unexpected reply %+v", r)
		}
	})

	t.Run("button edits the message", func(t *testing.T) {
		r := edited(t, tap(d, "filter_acct:A"))
		if r.Text != want {
			t.Errorf("got\n%s\nwant\n%s", r.Text, want)
		}
	})

	t.Run("account without entries", func(t *testing.T) {
		r := single(t, command(d, CmdFilter, "O"))
		if r.Text != "No entries found for account O." {
			t.Errorf("got %q", r.Text)
		}
	})
}

func TestDispatcher_TodayAndExport(t *testing.T) {
	d, svc := newTestDispatcher(t)
	seed(t, svc,
		entrySpec{core.Expense, 250, "Cash", "S", ""},
		entrySpec{core.Income, 1000, "Online", "A", "salary"},
	)

	today := single(t, command(d, CmdToday, "")).Text
	if !strings.HasPrefix(today, "Today's summary (Sat 14/03/2026)") {
		t.Errorf("unexpected title in\n%s", today)
	}
	if strings.Index(today, "| A  |") > strings.Index(today, "| S  |") {
		t.Errorf("entries should be sorted by account:\n%s", today)
	}

	r := single(t, command(d, CmdCSV, ""))
	if r.Document == nil {
		t.Fatalf("expected a document, got %+v", r)
	}
	if r.Document.Name != export.Filename {
		t.Errorf("document name = %q", r.Document.Name)
	}
	lines := strings.Split(strings.TrimSpace(string(r.Document.Content)), "\n")
	if len(lines) != 3 || lines[0] != "type,amount,mode,account,timestamp,note" {
		t.Errorf("unexpected csv:\n%s", r.Document.Content)
	}
}

func TestDispatcher_NewAmountReplacesEntry(t *testing.T) {
	d, svc := newTestDispatcher(t)

	text(d, "250")
	tap(d, "mode:Cash")
	r := single(t, text(d, "+75"))
	if !strings.Contains(r.Text, "Income of 75.00") || r.Buttons == nil {
		t.Errorf("expected a fresh mode prompt, got %+v", r)
	}
	tap(d, "mode:Online")
	tap(d, "acct:C")
	text(d, "-")

	txs, _ := svc.Ledger(context.Background(), testUser)
	if len(txs) != 1 || txs[0].Amount != 75 || txs[0].Kind != core.Income {
		t.Fatalf("unexpected ledger %+v", txs)
	}
}

func TestDispatcher_OutOfOrderInput(t *testing.T) {
	d, _ := newTestDispatcher(t)

	tests := []struct {
		name    string
		setup   func()
		event   func() []Reply
		wantAck bool
		want    string
	}{
		{
			name:    "account tap while awaiting mode",
			setup:   func() { text(d, "250") },
			event:   func() []Reply { return tap(d, "acct:A") },
			wantAck: true,
		},
		{
			name:    "unknown mode",
			event:   func() []Reply { return tap(d, "mode:Crypto") },
			wantAck: true,
		},
		{
			name:    "unknown payload",
			event:   func() []Reply { return tap(d, "bogus") },
			wantAck: true,
		},
		{
			name:  "free text while awaiting mode",
			event: func() []Reply { return text(d, "hello") },
			want:  MsgUseButtons,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			r := single(t, tt.event())
			if tt.wantAck && !r.AckOnly() {
				t.Errorf("expected bare ack, got %+v", r)
			}
			if tt.want != "" && r.Text != tt.want {
				t.Errorf("text = %q, want %q", r.Text, tt.want)
			}
		})
	}

	b, _ := d.sessions.Peek(testUser)
	if b.State() != dialog.AwaitingMode {
		t.Errorf("state = %s, want awaiting_mode", b.State())
	}
}

func TestDispatcher_Cancel(t *testing.T) {
	d, svc := newTestDispatcher(t)

	if got := single(t, command(d, CmdCancel, "")).Text; got != MsgNothingPending {
		t.Errorf("cancel with no entry = %q", got)
	}
	if r := edited(t, tap(d, dialog.PayloadCancel)); r.Text != MsgNothingPending {
		t.Errorf("cancel button with no entry = %q", r.Text)
	}
	if _, ok := d.sessions.Peek(testUser); ok {
		t.Error("a cancel tap with no entry should not create a session")
	}

	text(d, "99")
	r := edited(t, tap(d, dialog.PayloadCancel))
	if r.Text != MsgCancelled {
		t.Errorf("cancel button = %q", r.Text)
	}

	if r := edited(t, tap(d, dialog.PayloadCancel)); r.Text != MsgNothingPending {
		t.Errorf("stale cancel button = %q", r.Text)
	}
	if b, _ := d.sessions.Peek(testUser); b.State() != dialog.Cancelled {
		t.Errorf("stale cancel should not start a builder, state = %s", b.State())
	}

	text(d, "99")
	tap(d, "mode:Cash")
	if got := single(t, command(d, CmdCancel, "")).Text; got != MsgCancelled {
		t.Errorf("cancel command = %q", got)
	}

	// a cancelled dialogue accepts a new amount
	if r := single(t, text(d, "10")); r.Buttons == nil {
		t.Errorf("expected a mode prompt, got %+v", r)
	}
	if txs, _ := svc.Ledger(context.Background(), testUser); len(txs) != 0 {
		t.Errorf("nothing should be committed, got %d", len(txs))
	}
}

func TestDispatcher_Delete(t *testing.T) {
	d, svc := newTestDispatcher(t)
	seed(t, svc, entrySpec{core.Expense, 10, "Cash", "A", ""})

	if got := single(t, command(d, CmdDelete, "")).Text; got != MsgLedgerCleared {
		t.Errorf("delete = %q", got)
	}
	if txs, _ := svc.Ledger(context.Background(), testUser); len(txs) != 0 {
		t.Errorf("ledger should be empty, got %d", len(txs))
	}
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, name := range []string{CmdStart, CmdHelp, "HELP"} {
		if got := single(t, command(d, name, "")).Text; got != helpText {
			t.Errorf("%s did not return help", name)
		}
	}
	if got := single(t, command(d, "frobnicate", "")).Text; got != MsgGenericPrompt {
		t.Errorf("unknown command = %q", got)
	}
	if got := single(t, text(d, "   ")).Text; got != MsgGenericPrompt {
		t.Errorf("blank text = %q", got)
	}
}

type failingLedger struct{ err error }

func (f failingLedger) Commit(context.Context, core.Transaction) error { return f.err }
func (f failingLedger) Ledger(context.Context, int64) ([]core.Transaction, error) {
	return nil, f.err
}
func (f failingLedger) Clear(context.Context, int64) error { return f.err }

func TestDispatcher_BackendErrors(t *testing.T) {
	d := NewDispatcher(failingLedger{err: errors.New("disk on fire")}, core.DefaultCatalog(),
		func() time.Time { return testNow }, nil)

	for _, name := range []string{CmdToday, CmdCSV, CmdDelete} {
		if got := single(t, command(d, name, "")).Text; got != MsgBackendError {
			t.Errorf("%s = %q", name, got)
		}
	}

	text(d, "250")
	tap(d, "mode:Cash")
	tap(d, "acct:A")
	if got := single(t, text(d, "-")).Text; got != MsgBackendError {
		t.Errorf("commit = %q", got)
	}
}
