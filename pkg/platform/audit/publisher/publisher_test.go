package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "archivist/pkg/platform/audit"
	"archivist/pkg/platform/audit/store/memory"
	"archivist/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestPublisher_FillsRequestScopedFields(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithActor(ctx, "archivist-7")
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	err := pub.Emit(ctx, audit.Event{
		Action:     string(audit.EventCaseFileClosed),
		EntityType: audit.EntityCaseFile,
		EntityID:   "cf-1",
	})
	require.NoError(t, err)

	events, err := store.ListByEntity(ctx, audit.EntityCaseFile, "cf-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, audit.CategoryCompliance, e.Category)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "archivist-7", e.Actor)
	assert.Equal(t, "req-42", e.RequestID)
}

func TestPublisher_DefaultsToSystemActor(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:     string(audit.EventRetentionRun),
		EntityType: audit.EntityRetention,
		EntityID:   "2024-01-15",
	}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, requestcontext.SystemActor, events[0].Actor)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_RejectsIncompleteEvents(t *testing.T) {
	pub := New(memory.NewInMemoryStore())

	assert.Error(t, pub.Emit(context.Background(), audit.Event{EntityType: audit.EntityBox}))
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventBoxCreated)}))
}

func TestPublisher_FailsClosed(t *testing.T) {
	pub := New(failingStore{})

	err := pub.Emit(context.Background(), audit.Event{
		Action:     string(audit.EventDispositionApplied),
		EntityType: audit.EntityCaseFile,
		EntityID:   "cf-9",
	})
	assert.ErrorContains(t, err, "disk full")
}
