package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("kafka")
	assert.False(t, b.IsOpen())
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "kafka", b.Name())
}

func TestBreakerNonPositiveThresholdsUseDefaults(t *testing.T) {
	b := New("kafka", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for range defaultFailureThreshold - 1 {
		open, _ := b.RecordFailure()
		require.False(t, open)
	}
	open, change := b.RecordFailure()
	require.True(t, open)
	assert.True(t, change.Opened)

	for range defaultSuccessThreshold - 1 {
		closed, _ := b.RecordSuccess()
		require.False(t, closed)
	}
	closed, change := b.RecordSuccess()
	assert.True(t, closed)
	assert.True(t, change.Closed)
}

// The relay records one outcome per publish attempt; these sequences mirror
// a broker going away and coming back.
func TestBreakerSequences(t *testing.T) {
	const (
		fail = false
		ok   = true
	)
	tests := []struct {
		name     string
		failures int
		success  int
		outcomes []bool
		wantOpen bool
	}{
		{"opens at the failure threshold", 3, 1, []bool{fail, fail, fail}, true},
		{"success resets the failure streak", 3, 1, []bool{fail, fail, ok, fail, fail}, false},
		{"needs a success streak to close", 1, 2, []bool{fail, ok}, true},
		{"closes after the success streak", 1, 2, []bool{fail, ok, ok}, false},
		{"failure resets the success streak", 1, 3, []bool{fail, ok, ok, fail, ok, ok}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("kafka", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.success))
			for _, outcome := range tt.outcomes {
				if outcome {
					b.RecordSuccess()
				} else {
					b.RecordFailure()
				}
			}
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestBreakerReportsTransitionsOnce(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1))

	_, change := b.RecordFailure()
	assert.True(t, change.Opened)

	open, change := b.RecordFailure()
	assert.True(t, open)
	assert.False(t, change.Opened, "already open")

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}
