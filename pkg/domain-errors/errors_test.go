package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "load case file")

		assert.ErrorIs(t, err, cause)
		assert.True(t, HasCode(err, CodeInternal))
		assert.Equal(t, "internal error", Message(err))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
	})

	t.Run("outermost code wins through fmt wrapping", func(t *testing.T) {
		inner := New(CodeCapacityExceeded, "box is full")
		err := fmt.Errorf("create folder: %w", inner)

		assert.Equal(t, CodeCapacityExceeded, CodeOf(err))
		assert.Equal(t, "box is full", Message(err))
	})

	t.Run("uncoded error reports internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(nil, CodeNotFound))
	})
}
