package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"

	"ledgerbot/internal/core"
)

// fakeSheet serves the two Values endpoints the client uses.
type fakeSheet struct {
	mu      sync.Mutex
	rows    [][]any
	updates []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		ids := make([][]any, 0, len(f.rows))
		for _, row := range f.rows {
			ids = append(ids, []any{row[0]})
		}
		json.NewEncoder(w).Encode(map[string]any{"range": "Transactions!A:A", "values": ids})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(body, &vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		f.updates = append(f.updates, r.URL.Query().Get("valueInputOption"))
		json.NewEncoder(w).Encode(map[string]any{"updatedRows": len(vr.Values)})
	default:
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, sheet *fakeSheet) *Client {
	t.Helper()
	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		SheetName:     "Transactions",
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:        id,
		UserID:    7,
		Kind:      core.Expense,
		Amount:    250,
		Mode:      "Cash",
		Account:   "A",
		Note:      "groceries",
		CreatedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestNew_RequiresSettings(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing spreadsheet", Options{SheetName: "T"}, "missing spreadsheet id"},
		{"missing sheet", Options{SpreadsheetID: "x"}, "missing sheet name"},
		{"missing credentials", Options{SpreadsheetID: "x", SheetName: "T"}, "missing service account credentials"},
		{"unreadable file", Options{SpreadsheetID: "x", SheetName: "T", CredentialsFile: "/non/existent.json"}, "read service account file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestClient_AppendWritesHeaderOnce(t *testing.T) {
	sheet := &fakeSheet{}
	c := newTestClient(t, sheet)
	ctx := context.Background()

	ref, err := c.Append(ctx, sampleTx("tx-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "Transactions!A2:H2" {
		t.Errorf("ref = %q, want Transactions!A2:H2", ref)
	}

	ref, err = c.Append(ctx, sampleTx("tx-2"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "Transactions!A3:H3" {
		t.Errorf("ref = %q, want Transactions!A3:H3", ref)
	}

	if len(sheet.rows) != 3 || sheet.rows[0][0] != "id" {
		t.Fatalf("expected header + 2 rows, got %v", sheet.rows)
	}
	for _, opt := range sheet.updates {
		if opt != "USER_ENTERED" {
			t.Errorf("valueInputOption = %q", opt)
		}
	}
}

func TestClient_AppendIsIdempotent(t *testing.T) {
	sheet := &fakeSheet{}
	c := newTestClient(t, sheet)
	ctx := context.Background()

	first, err := c.Append(ctx, sampleTx("tx-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	again, err := c.Append(ctx, sampleTx("tx-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first != again {
		t.Errorf("redelivery ref = %q, want %q", again, first)
	}
	if len(sheet.rows) != 2 {
		t.Errorf("expected header + 1 row, got %d rows", len(sheet.rows))
	}
}

func TestClient_AppendValidates(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "T"}
	tx := sampleTx("tx-1")
	tx.Amount = 0

	_, err := c.Append(context.Background(), tx)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = c.Append(context.Background(), sampleTx("tx-1"))
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}
