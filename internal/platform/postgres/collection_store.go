package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/store"
)

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend. Entry payloads are
// stored as opaque jsonb.
type PostgresCollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of the
// CollectionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCollectionStore(db store.DBTX, logger *slog.Logger) *PostgresCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCollectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "collection_store")),
	}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// Create implements store.CollectionStore.Create
func (s *PostgresCollectionStore) Create(ctx context.Context, entry *domain.CollectionEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO collection_entries (id, user_id, payload, created_at) VALUES ($1, $2, $3, $4)`,
		entry.ID,
		entry.UserID,
		[]byte(entry.Payload),
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create collection entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return MapError(err)
	}

	log.Debug("collection entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("user_id", entry.UserID.String()))
	return nil
}

// ListByUser implements store.CollectionStore.ListByUser
func (s *PostgresCollectionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CollectionEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, payload, created_at
		 FROM collection_entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		log.Error("failed to query collection entries",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var entries []*domain.CollectionEntry
	for rows.Next() {
		var e domain.CollectionEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.UserID, &payload, &e.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		e.Payload = payload
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}
