package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// RevisionLogStore defines the interface for the append-only audit log of
// review outcomes.
type RevisionLogStore interface {
	// Append adds one audit row. Rows are never updated or deleted.
	Append(ctx context.Context, log *domain.RevisionLog) error

	// ListByUser returns a user's audit rows, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RevisionLog, error)

	// WithTx returns a RevisionLogStore bound to the given transaction so
	// the audit row commits atomically with the record transition.
	WithTx(tx *sql.Tx) RevisionLogStore
}
