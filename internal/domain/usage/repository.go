package usage

import (
	"context"
	"time"
)

// Repository defines the interface for usage ledger data access
type Repository interface {
	// Find returns the ledger for key or a NOT_FOUND error. It never writes.
	Find(ctx context.Context, key Key) (*Ledger, error)

	// GetOrCreate returns the ledger for key, inserting one seeded with limit
	// if none exists. Concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, key Key, limit int64, now time.Time) (*Ledger, error)

	// Reserve atomically applies charge if it fits under the limit. It returns
	// false, without modifying the row, when it does not.
	Reserve(ctx context.Context, ledgerID int64, charge Charge, now time.Time) (bool, error)

	// Reset overwrites the subscription's ledger with a fresh grant, creating
	// it if needed. Repeating it yields the same row and state.
	Reset(ctx context.Context, key Key, limit int64, now time.Time) (*Ledger, error)

	// GetByID retrieves a ledger by ID
	GetByID(ctx context.Context, id int64) (*Ledger, error)
}
