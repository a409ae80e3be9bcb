package bot

import (
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/dialog"
)

// Sessions holds the dialogue builder of every user routed to one shard.
// It is owned by a single goroutine and needs no locking.
type Sessions struct {
	catalog  core.Catalog
	clock    func() time.Time
	builders map[int64]*dialog.Builder
}

func NewSessions(catalog core.Catalog, clock func() time.Time) *Sessions {
	return &Sessions{
		catalog:  catalog,
		clock:    clock,
		builders: make(map[int64]*dialog.Builder),
	}
}

// Builder returns the user's builder, starting a fresh one when the user
// has none or the previous dialogue finished.
func (s *Sessions) Builder(userID int64) *dialog.Builder {
	b, ok := s.builders[userID]
	if !ok || b.State().Terminal() {
		b = dialog.NewBuilder(userID, s.catalog, s.clock)
		s.builders[userID] = b
	}
	return b
}

// Peek returns the user's builder without creating one.
func (s *Sessions) Peek(userID int64) (*dialog.Builder, bool) {
	b, ok := s.builders[userID]
	return b, ok
}

// Len is the number of users with a session.
func (s *Sessions) Len() int {
	return len(s.builders)
}
