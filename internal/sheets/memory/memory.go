// Package memory is an in-process sheet used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledgerbot/internal/core"
	ports "ledgerbot/internal/sheets"
)

var _ ports.TransactionWriter = (*Sheet)(nil)

type Sheet struct {
	mu   sync.Mutex
	rows [][]any
	refs map[string]string
}

func New() *Sheet {
	return &Sheet{refs: make(map[string]string)}
}

// Append stores the row and returns a synthetic row reference.
func (s *Sheet) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.refs[tx.ID]; ok {
		return ref, nil
	}
	s.rows = append(s.rows, ports.Row(tx))
	ref := fmt.Sprintf("mem:%d", len(s.rows))
	s.refs[tx.ID] = ref
	return ref, nil
}

// Rows returns a copy of the appended rows.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
