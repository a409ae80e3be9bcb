// Package export serializes a ledger into a downloadable table.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ledgerbot/internal/core"
)

// Filename is the name of the attachment sent to the user.
const Filename = "transactions.csv"

// Header is the fixed column layout of an export.
var Header = []string{"type", "amount", "mode", "account", "timestamp", "note"}

// CSV renders the transactions in ledger order. An empty slice still yields
// a header; callers decide whether an empty export is worth sending.
func CSV(txs []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the header and one row per transaction.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(Row(tx)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row is the export record of a single transaction.
func Row(tx core.Transaction) []string {
	return []string{
		tx.Kind.String(),
		FormatAmount(tx.Amount),
		tx.Mode,
		tx.Account,
		tx.Timestamp(),
		tx.Note,
	}
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
