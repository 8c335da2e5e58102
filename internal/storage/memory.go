package storage

import (
	"context"
	"sort"
	"sync"

	"bilancio/internal/core"
)

// MemoryStore implements Store with an in-process slice. It backs the
// default session-only mode and the test suites.
type MemoryStore struct {
	mu      sync.RWMutex
	batchID string
	txns    []core.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveLedger implements Store.
func (s *MemoryStore) SaveLedger(_ context.Context, batchID string, txns []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchID = batchID
	s.txns = make([]core.Transaction, len(txns))
	copy(s.txns, txns)
	return nil
}

// LoadLedger implements Store.
func (s *MemoryStore) LoadLedger(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	for i := range out {
		out[i].Derive()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// BatchID returns the batch tag of the last save, for tests.
func (s *MemoryStore) BatchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchID
}

func (s *MemoryStore) Close() error {
	return nil
}
