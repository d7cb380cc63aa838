package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivist/pkg/platform/circuit"
	auditstore "archivist/pkg/platform/audit/store/postgres"
	txcontext "archivist/pkg/platform/tx"
)

type fakeStore struct {
	mu        sync.Mutex
	entries   []auditstore.OutboxEntry
	published map[uuid.UUID]bool
}

func newFakeStore(n int) *fakeStore {
	s := &fakeStore{published: map[uuid.UUID]bool{}}
	for i := 0; i < n; i++ {
		s.entries = append(s.entries, auditstore.OutboxEntry{
			ID:          uuid.New(),
			AggregateID: "cf",
			EventType:   "case_file_closed",
			Payload:     []byte(`{}`),
		})
	}
	return s
}

func (s *fakeStore) FetchPending(_ context.Context, limit int) ([]auditstore.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []auditstore.OutboxEntry
	for _, e := range s.entries {
		if !s.published[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

type fakeSink struct {
	fail    bool
	batches [][]auditstore.OutboxEntry
}

func (s *fakeSink) Publish(_ context.Context, entries []auditstore.OutboxEntry) error {
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.batches = append(s.batches, entries)
	return nil
}

func TestRelayOnce(t *testing.T) {
	t.Run("delivers in batches and marks published", func(t *testing.T) {
		store := newFakeStore(5)
		sink := &fakeSink{}
		relay := New(store, txcontext.NewMemoryRunner(), sink, WithBatchSize(3))

		n, err := relay.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = relay.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = relay.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, sink.batches, 2)
	})

	t.Run("broker failure leaves entries pending", func(t *testing.T) {
		store := newFakeStore(2)
		relay := New(store, txcontext.NewMemoryRunner(), &fakeSink{fail: true})

		_, err := relay.RelayOnce(context.Background())
		assert.Error(t, err)

		pending, err := store.FetchPending(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})
}

func TestRelayCircuit(t *testing.T) {
	store := newFakeStore(1)
	sink := &fakeSink{fail: true}
	relay := New(store, txcontext.NewMemoryRunner(), sink,
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))),
	)
	ctx := context.Background()
	assert.Equal(t, "audit_outbox", relay.Name())

	_, err := relay.RelayOnce(ctx)
	require.Error(t, err)
	assert.NoError(t, relay.Check(ctx), "one failure keeps the circuit closed")

	_, err = relay.RelayOnce(ctx)
	require.Error(t, err)
	assert.Error(t, relay.Check(ctx))

	sink.fail = false
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, relay.Check(ctx))
}
