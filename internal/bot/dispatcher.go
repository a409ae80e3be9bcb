package bot

import (
	"context"
	"strings"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/dialog"
	"ledgerbot/internal/export"
	"ledgerbot/internal/log"
	"ledgerbot/internal/report"
)

// Ledger is the part of the ledger service the dispatcher needs.
type Ledger interface {
	Commit(ctx context.Context, tx core.Transaction) error
	Ledger(ctx context.Context, userID int64) ([]core.Transaction, error)
	Clear(ctx context.Context, userID int64) error
}

// Commands understood by the dispatcher.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdToday  = "today"
	CmdCSV    = "csv"
	CmdExport = "export"
	CmdDelete = "delete"
	CmdFilter = "filter"
	CmdCancel = "cancel"
)

// Dispatcher handles the events of the users of one shard. Handle must not
// be called concurrently.
type Dispatcher struct {
	ledger   Ledger
	catalog  core.Catalog
	clock    func() time.Time
	sessions *Sessions
	logger   *log.Logger
}

func NewDispatcher(ledger Ledger, catalog core.Catalog, clock func() time.Time, logger *log.Logger) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Dispatcher{
		ledger:   ledger,
		catalog:  catalog,
		clock:    clock,
		sessions: NewSessions(catalog, clock),
		logger:   logger.WithComponent(log.ComponentBot),
	}
}

// Handle processes one event and returns the replies to send, in order.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) []Reply {
	switch ev.Kind {
	case EventCommand:
		return d.handleCommand(ctx, ev)
	case EventCallback:
		return d.handleCallback(ctx, ev)
	default:
		return d.handleText(ctx, ev)
	}
}

func (d *Dispatcher) handleText(ctx context.Context, ev Event) []Reply {
	b := d.sessions.Builder(ev.UserID)
	if strings.TrimSpace(ev.Text) == "" && b.State() != dialog.AwaitingNote {
		return []Reply{d.text(ev, MsgGenericPrompt)}
	}

	// Notes are kept verbatim; amount parsing ignores whitespace itself.
	out := b.Apply(dialog.EnterText{Text: ev.Text})
	d.logTransition(ctx, ev, out)

	switch {
	case out.Err != nil && out.From == dialog.AwaitingAmount:
		return []Reply{d.text(ev, invalidAmountText(out.Err))}
	case out.Err != nil:
		d.logger.ErrorContext(ctx, "Entry could not be completed", log.FieldUserID, ev.UserID, log.FieldError, out.Err)
		return []Reply{d.text(ev, MsgBackendError)}
	case !out.Matched:
		return []Reply{d.text(ev, MsgUseButtons)}
	case out.Committed != nil:
		return []Reply{d.commit(ctx, ev, *out.Committed)}
	case out.To == dialog.AwaitingMode:
		r := d.text(ev, modePrompt(b.Pending()))
		r.Buttons = modeButtons(d.catalog)
		return []Reply{r}
	default:
		return nil
	}
}

func (d *Dispatcher) commit(ctx context.Context, ev Event, tx core.Transaction) Reply {
	if err := d.ledger.Commit(ctx, tx); err != nil {
		d.logger.ErrorContext(ctx, "Failed to commit transaction",
			log.FieldUserID, ev.UserID,
			log.FieldTxID, tx.ID,
			log.FieldError, err)
		return d.text(ev, MsgBackendError)
	}
	return d.text(ev, savedText(tx))
}

func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) []Reply {
	ack := Reply{ChatID: ev.ChatID, CallbackID: ev.CallbackID}

	action, ok := dialog.DecodePayload(ev.Payload)
	if !ok {
		d.logger.DebugContext(ctx, "Ignoring unknown callback payload", log.FieldUserID, ev.UserID, "payload", ev.Payload)
		return []Reply{ack}
	}

	if f, isFilter := action.(dialog.FilterByAccount); isFilter {
		return []Reply{ack, d.edit(ev, d.accountView(ctx, ev, f.Value))}
	}

	if _, isCancel := action.(dialog.Cancel); isCancel && !d.hasPending(ev.UserID) {
		return []Reply{ack, d.edit(ev, MsgNothingPending)}
	}

	b := d.sessions.Builder(ev.UserID)
	out := b.Apply(action)
	d.logTransition(ctx, ev, out)
	if !out.Matched {
		return []Reply{ack}
	}

	var r Reply
	switch out.To {
	case dialog.AwaitingAccount:
		r = d.edit(ev, accountPrompt(b.Pending()))
		r.Buttons = accountButtons(d.catalog)
	case dialog.AwaitingNote:
		r = d.edit(ev, notePrompt(b.Pending()))
	case dialog.Cancelled:
		r = d.edit(ev, MsgCancelled)
	default:
		return []Reply{ack}
	}
	return []Reply{ack, r}
}

func (d *Dispatcher) handleCommand(ctx context.Context, ev Event) []Reply {
	switch strings.ToLower(ev.Command) {
	case CmdStart, CmdHelp:
		return []Reply{d.text(ev, helpText)}

	case CmdToday:
		txs, err := d.ledger.Ledger(ctx, ev.UserID)
		if err != nil {
			return []Reply{d.backendError(ctx, ev, err)}
		}
		return []Reply{d.text(ev, report.DayView(txs, d.clock()).Render())}

	case CmdCSV, CmdExport:
		return []Reply{d.export(ctx, ev)}

	case CmdDelete:
		if err := d.ledger.Clear(ctx, ev.UserID); err != nil {
			return []Reply{d.backendError(ctx, ev, err)}
		}
		return []Reply{d.text(ev, MsgLedgerCleared)}

	case CmdFilter:
		account := strings.TrimSpace(ev.Args)
		if account == "" {
			r := d.text(ev, MsgSelectFilter)
			r.Buttons = filterButtons(d.catalog)
			return []Reply{r}
		}
		return []Reply{d.text(ev, d.accountView(ctx, ev, account))}

	case CmdCancel:
		if !d.hasPending(ev.UserID) {
			return []Reply{d.text(ev, MsgNothingPending)}
		}
		b, _ := d.sessions.Peek(ev.UserID)
		d.logTransition(ctx, ev, b.Apply(dialog.Cancel{}))
		return []Reply{d.text(ev, MsgCancelled)}

	default:
		return []Reply{d.text(ev, MsgGenericPrompt)}
	}
}

// hasPending reports whether the user is partway through an entry.
func (d *Dispatcher) hasPending(userID int64) bool {
	b, ok := d.sessions.Peek(userID)
	return ok && b.State() != dialog.AwaitingAmount && !b.State().Terminal()
}

func (d *Dispatcher) accountView(ctx context.Context, ev Event, account string) string {
	txs, err := d.ledger.Ledger(ctx, ev.UserID)
	if err != nil {
		return d.backendError(ctx, ev, err).Text
	}
	return report.AccountView(txs, account).Render()
}

func (d *Dispatcher) export(ctx context.Context, ev Event) Reply {
	txs, err := d.ledger.Ledger(ctx, ev.UserID)
	if err != nil {
		return d.backendError(ctx, ev, err)
	}
	if len(txs) == 0 {
		return d.text(ev, MsgNoDataToExport)
	}
	content, err := export.CSV(txs)
	if err != nil {
		return d.backendError(ctx, ev, err)
	}
	d.logger.InfoContext(ctx, "Ledger exported",
		log.FieldUserID, ev.UserID,
		log.FieldOperation, log.OpExport,
		"rows", len(txs))
	return Reply{
		ChatID:   ev.ChatID,
		Document: &Document{Name: export.Filename, Content: content, Caption: MsgExportCaption},
	}
}

func (d *Dispatcher) backendError(ctx context.Context, ev Event, err error) Reply {
	d.logger.ErrorContext(ctx, "Ledger backend error",
		log.FieldUserID, ev.UserID,
		log.FieldEvent, ev.Kind.String(),
		log.FieldError, err)
	return d.text(ev, MsgBackendError)
}

func (d *Dispatcher) text(ev Event, text string) Reply {
	return Reply{ChatID: ev.ChatID, Text: text}
}

// edit replaces the message that carried the tapped keyboard.
func (d *Dispatcher) edit(ev Event, text string) Reply {
	return Reply{ChatID: ev.ChatID, Text: text, EditMessageID: ev.MessageID}
}

func (d *Dispatcher) logTransition(ctx context.Context, ev Event, out dialog.Outcome) {
	if !out.Matched {
		return
	}
	d.logger.DebugContext(ctx, "Dialogue transition",
		log.FieldUserID, ev.UserID,
		log.FieldEvent, ev.Kind.String(),
		"from", out.From.String(),
		log.FieldState, out.To.String(),
		"replaced", out.Replaced)
}
