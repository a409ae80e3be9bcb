package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger/memory"
	"ledgerbot/internal/services"
)

const user int64 = 12345

var now = time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *services.LedgerService) {
	t.Helper()
	pterm.DisableStyling()

	svc := services.NewLedgerService(memory.New(), nil, nil)
	opened, closed := 0, 0
	a := &app{
		open: func(context.Context, string) (ledgerAPI, *time.Location, func() error, error) {
			opened++
			return svc, time.UTC, func() error { closed++; return nil }, nil
		},
		now: func() time.Time { return now },
	}
	t.Cleanup(func() {
		if opened != closed {
			t.Errorf("opened %d backends, closed %d", opened, closed)
		}
	})
	return a, svc
}

func seedLedger(t *testing.T, svc *services.LedgerService) {
	t.Helper()
	entries := []core.Transaction{
		core.NewTransaction(user, core.Expense, 250, "Cash", "S", "", now.Add(-time.Hour), "250"),
		core.NewTransaction(user, core.Income, 1000, "Online", "A", "salary", now.Add(-30*time.Minute), "+1000"),
		core.NewTransaction(user, core.Expense, 40, "Cash", "A", "bus", now.Add(-48*time.Hour), "40"),
	}
	for _, tx := range entries {
		if err := svc.Commit(context.Background(), tx); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if cerr := a.close(); cerr != nil {
		t.Errorf("close: %v", cerr)
	}
	return out.String(), err
}

func TestUserIsRequired(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := run(t, a, "list"); err == nil || !strings.Contains(err.Error(), "--user") {
		t.Errorf("expected missing user error, got %v", err)
	}
}

func TestList(t *testing.T) {
	a, svc := newTestApp(t)
	seedLedger(t, svc)

	out, err := run(t, a, "list", "-u", "12345")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{"salary", "bus", "+1000.00", "-250.00", "Total income: 1000.00", "Total expense: 290.00", "Net total: 710.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, a, "list", "-u", "12345", "--account", "S")
	if err != nil {
		t.Fatalf("list --account error: %v", err)
	}
	if strings.Contains(out, "salary") || !strings.Contains(out, "-250.00") {
		t.Errorf("account filter not applied:\n%s", out)
	}

	out, _ = run(t, a, "list", "-u", "12345", "--account", "O")
	if !strings.Contains(out, "No entries found for account O.") {
		t.Errorf("expected empty account text:\n%s", out)
	}
}

func TestToday(t *testing.T) {
	a, svc := newTestApp(t)

	out, err := run(t, a, "today", "-u", "12345")
	if err != nil {
		t.Fatalf("today error: %v", err)
	}
	if strings.TrimSpace(out) != "No entries for today." {
		t.Errorf("unexpected empty output %q", out)
	}

	seedLedger(t, svc)
	out, _ = run(t, a, "today", "-u", "12345")
	if strings.Contains(out, "bus") {
		t.Errorf("entry from two days ago should be excluded:\n%s", out)
	}
	if !strings.Contains(out, "Net total: +750.00") {
		t.Errorf("missing net total:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	a, svc := newTestApp(t)

	out, err := run(t, a, "export", "-u", "12345")
	if err != nil || !strings.Contains(out, "No data to export.") {
		t.Fatalf("empty export: %q, %v", out, err)
	}

	seedLedger(t, svc)
	out, err = run(t, a, "export", "-u", "12345")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !strings.HasPrefix(out, "type,amount,mode,account,timestamp,note\n") {
		t.Errorf("unexpected csv:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if _, err := run(t, a, "export", "-u", "12345", "-o", path); err != nil {
		t.Fatalf("export to file error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 4 {
		t.Errorf("expected header and 3 rows, got %d lines", lines)
	}
}

func TestClear(t *testing.T) {
	a, svc := newTestApp(t)
	seedLedger(t, svc)

	if _, err := run(t, a, "clear", "-u", "12345"); err == nil {
		t.Fatal("clear without --yes should fail")
	}
	if txs, _ := svc.Ledger(context.Background(), user); len(txs) != 3 {
		t.Fatalf("ledger changed without confirmation")
	}

	if _, err := run(t, a, "clear", "-u", "12345", "--yes"); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if txs, _ := svc.Ledger(context.Background(), user); len(txs) != 0 {
		t.Errorf("ledger not cleared, %d entries left", len(txs))
	}
}

func TestCapitalize(t *testing.T) {
	if capitalize("open ledger") != "Open ledger" || capitalize("") != "" {
		t.Error("capitalize")
	}
}
