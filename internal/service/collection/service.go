// Package collection is the personal collection tracker. Entries are
// opaque blobs owned by a user; adding one counts toward the owner's
// daily activity via the emitted event.
package collection

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/events"
	"github.com/errata-app/errata-api/internal/store"
)

// CollectionService stores and lists collection entries.
type CollectionService interface {
	// Add creates a new entry and emits the CollectionEntryAdded event.
	Add(ctx context.Context, userID uuid.UUID, payload json.RawMessage) (*domain.CollectionEntry, error)

	// List returns the user's entries, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.CollectionEntry, error)
}

type collectionService struct {
	entries store.CollectionStore
	emitter events.Emitter
	logger  *slog.Logger
}

var _ CollectionService = (*collectionService)(nil)

// NewCollectionService creates a CollectionService. All dependencies are
// required.
func NewCollectionService(entries store.CollectionStore, emitter events.Emitter, logger *slog.Logger) CollectionService {
	if entries == nil {
		panic("entries cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &collectionService{
		entries: entries,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "collection_service")),
	}
}

func (s *collectionService) Add(ctx context.Context, userID uuid.UUID, payload json.RawMessage) (*domain.CollectionEntry, error) {
	entry, err := domain.NewCollectionEntry(userID, payload)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	event, err := events.NewEvent(events.TypeCollectionEntryAdded, events.CollectionEntryAddedPayload{
		UserID:  userID,
		EntryID: entry.ID,
	})
	if err == nil {
		if err := s.emitter.Emit(ctx, event); err != nil {
			s.logger.Warn("collection event delivery failed",
				slog.String("entry_id", entry.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return entry, nil
}

func (s *collectionService) List(ctx context.Context, userID uuid.UUID) ([]*domain.CollectionEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}
