package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyEntryPayload is returned when a collection entry has no payload.
var ErrEmptyEntryPayload = errors.New("collection entry payload cannot be empty")

// CollectionEntry is one item in a user's personal collection tracker.
// The payload is opaque to the core; its only contribution to the review
// engine is counting toward the owner's daily activity.
type CollectionEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCollectionEntry creates a collection entry owned by the given user.
func NewCollectionEntry(userID uuid.UUID, payload json.RawMessage) (*CollectionEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyRecordUserID
	}

	if len(payload) == 0 {
		return nil, ErrEmptyEntryPayload
	}

	return &CollectionEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}
