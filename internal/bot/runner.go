package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/core"
	"ledgerbot/internal/log"
)

// ErrStopped is returned by Submit once the runner has shut down.
var ErrStopped = errors.New("bot runner stopped")

const shardQueueSize = 64

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Ledger  Ledger
	Catalog core.Catalog
	Sender  Sender
	Clock   func() time.Time
	Logger  *log.Logger

	// Shards is the number of worker goroutines. Each user is always
	// handled by the same shard.
	Shards int
}

type shard struct {
	id     int
	events chan Event
	disp   *Dispatcher
}

// Runner fans events out to a fixed set of shards. Events of one user are
// handled and answered in arrival order; different users run concurrently.
type Runner struct {
	shards []*shard
	sender Sender
	logger *log.Logger
	sl     *log.StructuredLogger
	done   chan struct{}
}

func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Ledger == nil {
		return nil, errors.New("bot runner requires a ledger")
	}
	if opts.Sender == nil {
		return nil, errors.New("bot runner requires a sender")
	}
	if opts.Shards < 1 {
		opts.Shards = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	logger := opts.Logger.WithComponent(log.ComponentBot)
	r := &Runner{
		shards: make([]*shard, opts.Shards),
		sender: opts.Sender,
		logger: logger,
		sl:     log.NewStructuredLogger(logger),
		done:   make(chan struct{}),
	}
	for i := range r.shards {
		r.shards[i] = &shard{
			id:     i,
			events: make(chan Event, shardQueueSize),
			disp:   NewDispatcher(opts.Ledger, opts.Catalog, opts.Clock, opts.Logger),
		}
	}
	return r, nil
}

// Shards is the number of shards.
func (r *Runner) Shards() int {
	return len(r.shards)
}

// ShardFor maps a user to its shard index.
func (r *Runner) ShardFor(userID int64) int {
	n := int64(len(r.shards))
	idx := userID % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

// Submit queues an event on the user's shard. It blocks while the shard
// queue is full.
func (r *Runner) Submit(ctx context.Context, ev Event) error {
	s := r.shards[r.ShardFor(ev.UserID)]
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the shards and blocks until ctx is cancelled. Events still
// queued at that point are dropped.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	r.logger.Info("Starting bot runner", "shards", len(r.shards))
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range r.shards {
		g.Go(func() error {
			return r.loop(gctx, s)
		})
	}
	err := g.Wait()
	r.logger.Info("Bot runner stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) loop(ctx context.Context, s *shard) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			r.handle(ctx, s, ev)
		}
	}
}

func (r *Runner) handle(ctx context.Context, s *shard, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Panic while handling event",
				log.FieldShard, s.id,
				log.FieldUserID, ev.UserID,
				log.FieldEvent, ev.Kind.String(),
				log.FieldError, fmt.Sprint(p))
		}
	}()

	r.sl.LogEvent(ctx, ev.UserID, ev.ChatID, ev.Kind.String(), s.id)
	for _, reply := range s.disp.Handle(ctx, ev) {
		if err := r.sender.Send(ctx, reply); err != nil {
			r.logger.Error("Failed to send reply",
				log.FieldShard, s.id,
				log.FieldUserID, ev.UserID,
				log.FieldChatID, reply.ChatID,
				log.FieldError, err)
		}
	}
}
