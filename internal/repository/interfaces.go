package repository

import (
	"context"
	"errors"

	"bizgifts-bot/internal/model"
)

// ErrNotFound is returned by Lookup when no connection exists for a user.
var ErrNotFound = errors.New("connection not found")

// ConnectionRepository defines connection registry data access methods.
// The registry holds at most one record per user ID.
type ConnectionRepository interface {
	// Upsert inserts a connection record or replaces the existing record
	// with the same user ID in place. Idempotent for identical input.
	Upsert(ctx context.Context, rec model.ConnectionRecord) error

	// Lookup returns the stored connection ID for a user.
	// Returns ErrNotFound when the user is unknown.
	Lookup(ctx context.Context, userID int64) (string, error)

	// Count returns the number of stored connection records.
	Count(ctx context.Context) (int, error)

	// Clear removes every stored connection record. Irreversible.
	Clear(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}
