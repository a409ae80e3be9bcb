// Package worker holds the background consumers fed by the message bus.
package worker

import (
	"context"
	"fmt"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/cache"
	"ledgerbot/internal/log"
	"ledgerbot/internal/sheets"
)

// MirrorWorker copies committed transactions into a spreadsheet.
type MirrorWorker struct {
	sheet  sheets.TransactionWriter
	seen   cache.Cache[string]
	logger *log.Logger
}

// NewMirrorWorker creates a worker. seen remembers the row reference of
// recently mirrored transaction ids so redeliveries skip the sheet.
func NewMirrorWorker(sheet sheets.TransactionWriter, seen cache.Cache[string], logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		sheet:  sheet,
		seen:   seen,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransaction processes one TransactionCommittedMessage. Malformed
// messages are logged and acknowledged; sheet failures are returned so the
// message is requeued.
func (w *MirrorWorker) HandleTransaction(ctx context.Context, msg *amqp.TransactionCommittedMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		w.logger.ErrorContext(ctx, "Dropping invalid transaction message",
			log.FieldTxID, msg.ID,
			log.FieldError, err)
		return nil
	}

	if ref, ok := w.seen.Get(tx.ID); ok {
		w.logger.DebugContext(ctx, "Skipping already mirrored transaction",
			log.FieldTxID, tx.ID,
			"row_ref", ref)
		return nil
	}

	ref, err := w.sheet.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
	}
	w.seen.Set(tx.ID, ref)

	w.logger.InfoContext(ctx, "Mirrored transaction",
		log.FieldOperation, log.OpMirror,
		log.FieldTxID, tx.ID,
		log.FieldUserID, tx.UserID,
		"row_ref", ref)
	return nil
}
