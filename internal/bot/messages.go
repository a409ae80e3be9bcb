package bot

import (
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/dialog"
	"ledgerbot/internal/export"
)

// User-facing texts.
const (
	MsgGenericPrompt  = "Send an amount (e.g. 250 or +1000) to begin."
	MsgNoDataToExport = "No data to export."
	MsgCancelled      = "Entry cancelled."
	MsgNothingPending = "Nothing to cancel."
	MsgUseButtons     = "Please pick one of the buttons above, or send a new amount to start over."
	MsgSelectFilter   = "Select an account to filter:"
	MsgLedgerCleared  = "All your entries have been deleted."
	MsgBackendError   = "Sorry, something went wrong. Please try again."
	MsgExportCaption  = "Your transactions"
)

const helpText = `Hi! I keep a simple ledger of your expenses and income.

Send an amount to start an entry:
  250 or -99.50  expense
  +1000          income
Then pick a payment mode and an account, and send a note (or - to skip).

Commands:
/today - today's entries and totals
/filter [account] - entries of one account
/csv - download all entries as CSV
/cancel - abandon the entry in progress
/delete - delete all your entries`

func invalidAmountText(err error) string {
	input := ""
	var ae *core.AmountError
	if errors.As(err, &ae) {
		input = ae.Input
	}
	return fmt.Sprintf("Invalid amount %q. Try something like %s.", input, strings.Join(core.AmountHints, ", "))
}

func describeEntry(e *dialog.Entry) string {
	var b strings.Builder
	if e.Kind == core.Income {
		b.WriteString("Income")
	} else {
		b.WriteString("Expense")
	}
	fmt.Fprintf(&b, " of %s", export.FormatAmount(e.Amount))
	if e.Mode != "" {
		fmt.Fprintf(&b, " via %s", e.Mode)
	}
	if e.Account != "" {
		fmt.Fprintf(&b, " on account %s", e.Account)
	}
	return b.String()
}

func modePrompt(e *dialog.Entry) string {
	return describeEntry(e) + ".\nSelect payment mode:"
}

func accountPrompt(e *dialog.Entry) string {
	return describeEntry(e) + ".\nSelect account:"
}

func notePrompt(e *dialog.Entry) string {
	return describeEntry(e) + ".\nSend a note, or " + dialog.EmptyNote + " to skip."
}

func savedText(tx core.Transaction) string {
	text := fmt.Sprintf("✅ Entry saved: %s%s | %s | %s",
		tx.Kind.Sign(), export.FormatAmount(tx.Amount), tx.Mode, tx.Account)
	if tx.Note != "" {
		text += " | " + tx.Note
	}
	return text
}

func modeButtons(catalog core.Catalog) [][]Button {
	row := make([]Button, 0, len(catalog.Modes))
	for _, m := range catalog.Modes {
		row = append(row, Button{Text: m, Payload: dialog.EncodeMode(m)})
	}
	return [][]Button{row, cancelRow()}
}

func accountButtons(catalog core.Catalog) [][]Button {
	return [][]Button{accountRow(catalog, dialog.EncodeAccount), cancelRow()}
}

func filterButtons(catalog core.Catalog) [][]Button {
	return [][]Button{accountRow(catalog, dialog.EncodeFilter)}
}

func accountRow(catalog core.Catalog, encode func(string) string) []Button {
	row := make([]Button, 0, len(catalog.Accounts))
	for _, a := range catalog.Accounts {
		row = append(row, Button{Text: a, Payload: encode(a)})
	}
	return row
}

func cancelRow() []Button {
	return []Button{{Text: "Cancel", Payload: dialog.PayloadCancel}}
}
