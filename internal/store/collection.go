package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// CollectionStore defines the interface for collection entry persistence.
// Entries are opaque to the core; only their existence feeds the daily
// activity counter.
type CollectionStore interface {
	// Create saves a new collection entry.
	Create(ctx context.Context, entry *domain.CollectionEntry) error

	// ListByUser returns a user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CollectionEntry, error)
}
