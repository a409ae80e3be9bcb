package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"ledgerbot/internal/core"
)

func TestCSVRowsMatchLedger(t *testing.T) {
	at := time.Date(2025, 1, 6, 8, 5, 0, 0, time.UTC)
	txs := []core.Transaction{
		core.NewTransaction(1, core.Expense, 250, "Cash", "A", "", at, "250"),
		core.NewTransaction(1, core.Income, 1000, "Online", "S", "salary, june", at.Add(time.Hour), "+1000"),
		core.NewTransaction(1, core.Expense, 3.5, "Cash", "C", "tea", at.Add(2*time.Hour), "3.5"),
	}
	out, err := CSV(txs)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != len(txs)+1 {
		t.Fatalf("expected %d records, got %d", len(txs)+1, len(records))
	}
	if strings.Join(records[0], ",") != "type,amount,mode,account,timestamp,note" {
		t.Fatalf("unexpected header %v", records[0])
	}
	want := []string{"income", "1000.00", "Online", "S", "Mon 06/01/2025 09:05", "salary, june"}
	for i, v := range want {
		if records[2][i] != v {
			t.Fatalf("column %d: expected %q, got %q", i, v, records[2][i])
		}
	}
	if records[3][1] != "3.50" {
		t.Fatalf("expected two decimals, got %q", records[3][1])
	}
}

func TestCSVEmptyLedgerHasOnlyHeader(t *testing.T) {
	out, err := CSV(nil)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if strings.TrimSpace(string(out)) != strings.Join(Header, ",") {
		t.Fatalf("unexpected output %q", out)
	}
}
