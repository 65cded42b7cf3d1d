package memory

import (
	"context"
	"fmt"
	"sync"

	"familybank/internal/core"
)

// Store keeps appended transactions in memory. It stands in for the
// Sheets adapter in tests and when no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []Row
}

type Row struct {
	ChildName   string
	Transaction core.Transaction
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, childName string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Row{ChildName: childName, Transaction: t})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.items...)
}
