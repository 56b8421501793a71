package events_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errata-app/errata-api/internal/events"
)

type recordingHandler struct {
	seen []*events.Event
	err  error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.Event) error {
	h.seen = append(h.seen, event)
	return h.err
}

func TestInMemoryEmitter_DeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEmitter(slog.Default())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := events.NewEvent(events.TypeErrorLogged, struct{}{})
	require.NoError(t, err)

	require.NoError(t, emitter.Emit(context.Background(), event))
	assert.Len(t, first.seen, 1)
	assert.Len(t, second.seen, 1)
	assert.Equal(t, event.ID, first.seen[0].ID)
}

func TestInMemoryEmitter_NoHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEmitter(slog.Default())
	event, err := events.NewEvent(events.TypeErrorLogged, struct{}{})
	require.NoError(t, err)

	assert.NoError(t, emitter.Emit(context.Background(), event))
}

func TestInMemoryEmitter_HandlerFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEmitter(slog.Default())
	failing := &recordingHandler{err: errors.New("handler exploded")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := events.NewEvent(events.TypeReviewCompleted, struct{}{})
	require.NoError(t, err)

	err = emitter.Emit(context.Background(), event)
	assert.ErrorContains(t, err, "handler exploded")
	assert.Len(t, healthy.seen, 1, "later handlers still run after a failure")
}
