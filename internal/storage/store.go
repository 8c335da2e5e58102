// Package storage persists the ledger. The Store interface keeps the
// service layer independent of the backing implementation: an embedded
// SQLite database for real use, an in-memory store for tests and
// throwaway sessions.
package storage

import (
	"context"

	"bilancio/internal/core"
)

// Store is a whole-ledger key-value style persistence surface. The
// ledger is one user session's full transaction set, so writes replace
// it wholesale; there is no partial-update API.
type Store interface {
	// SaveLedger replaces the stored ledger with txns, tagged with the
	// batch ID of the import or categorization run that produced it.
	SaveLedger(ctx context.Context, batchID string, txns []core.Transaction) error

	// LoadLedger returns the stored ledger sorted ascending by date,
	// with derived fields populated. An empty store yields an empty
	// ledger, not an error.
	LoadLedger(ctx context.Context) ([]core.Transaction, error)

	Close() error
}
