package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityDay is one (user, calendar date) pair with the number of
// qualifying actions logged that day. The count only ever increases
// within a day; increments are applied atomically by the store so
// concurrent sessions cannot lose updates.
type ActivityDay struct {
	UserID uuid.UUID `json:"user_id"`
	Day    time.Time `json:"day"` // UTC midnight
	Count  int       `json:"count"`
}
