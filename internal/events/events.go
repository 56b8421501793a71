// Package events decomposes the side effects of the primary writes into
// independent handlers. Logging an error or recording a review outcome
// emits an event; XP crediting, activity counting and badge evaluation
// subscribe to it instead of being welded into one monolithic function.
// This bounds the blast radius of partial failures: the primary write has
// already committed when handlers run, and a failed handler is logged and
// surfaced without undoing it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the core services.
const (
	// TypeErrorLogged is emitted after a new error record is persisted.
	TypeErrorLogged = "error.logged"

	// TypeReviewCompleted is emitted after a review outcome is applied to
	// a record. Skipped outcomes are included; handlers decide whether an
	// outcome earns anything.
	TypeReviewCompleted = "review.completed"

	// TypeCollectionEntryAdded is emitted after a collection entry is
	// persisted. It only feeds the daily activity counter.
	TypeCollectionEntryAdded = "collection.entry_added"
)

// ErrorLoggedPayload is the payload for TypeErrorLogged events.
type ErrorLoggedPayload struct {
	UserID  uuid.UUID `json:"user_id"`
	ErrorID uuid.UUID `json:"error_id"`
}

// ReviewCompletedPayload is the payload for TypeReviewCompleted events.
type ReviewCompletedPayload struct {
	UserID  uuid.UUID `json:"user_id"`
	ErrorID uuid.UUID `json:"error_id"`
	Outcome string    `json:"outcome"`
}

// CollectionEntryAddedPayload is the payload for TypeCollectionEntryAdded events.
type CollectionEntryAddedPayload struct {
	UserID  uuid.UUID `json:"user_id"`
	EntryID uuid.UUID `json:"entry_id"`
}

// Event is a domain event with a typed name and a JSON payload.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Handler defines an interface for components that can handle events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of
// handlers.
type Emitter interface {
	// Emit publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	Emit(ctx context.Context, event *Event) error
}
