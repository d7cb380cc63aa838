package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunner(t *testing.T) {
	t.Run("nested calls join the outer unit", func(t *testing.T) {
		r := NewMemoryRunner()
		calls := 0
		err := r.RunInTx(context.Background(), func(txCtx context.Context) error {
			calls++
			return r.RunInTx(txCtx, func(context.Context) error {
				calls++
				return r.Savepoint(txCtx, func(context.Context) error {
					calls++
					return nil
				})
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("errors propagate", func(t *testing.T) {
		r := NewMemoryRunner()
		boom := errors.New("boom")
		err := r.RunInTx(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("units are serialized", func(t *testing.T) {
		r := NewMemoryRunner()
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.RunInTx(context.Background(), func(context.Context) error {
					v := counter
					counter = v + 1
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})

	t.Run("cancelled context is rejected", func(t *testing.T) {
		r := NewMemoryRunner()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := r.RunInTx(ctx, func(context.Context) error { return nil })
		assert.Error(t, err)
	})
}
