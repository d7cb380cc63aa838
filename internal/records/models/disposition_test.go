package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "archivist/pkg/domain-errors"
)

func settled(t *testing.T, today string) *CaseFile {
	t.Helper()
	cf := closedCaseFile("2024-01-15")
	l, _ := Evaluate(cf, twoThreeDestruction, date(today))
	cf.ApplyLifecycle(l, time.Now())
	return cf
}

func TestCanApply(t *testing.T) {
	t.Run("transfer needs closed_in_management exactly", func(t *testing.T) {
		cf := settled(t, "2024-02-01")
		require.Equal(t, PhaseInManagement, cf.Phase)
		assert.NoError(t, cf.CanApply(ActionTransfer, date("2026-01-15")))

		cf.Status = StatusClosedInCentral
		err := cf.CanApply(ActionTransfer, date("2026-01-15"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("transfer waits for the management deadline", func(t *testing.T) {
		cf := settled(t, "2024-02-01")
		err := cf.CanApply(ActionTransfer, date("2026-01-14"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		cf.ManagementEndDate = nil
		err = cf.CanApply(ActionTransfer, date("2030-01-01"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState), "deadlines not computed yet")
	})

	t.Run("destroy waits for the track deadline", func(t *testing.T) {
		cf := settled(t, "2028-12-25")
		err := cf.CanApply(ActionDestroy, date("2028-12-25"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		cf = settled(t, "2029-01-20")
		assert.NoError(t, cf.CanApply(ActionDestroy, date("2029-01-20")))
	})

	t.Run("active and final case files are rejected", func(t *testing.T) {
		cf := &CaseFile{Status: StatusActive}
		assert.True(t, dErrors.HasCode(cf.CanApply(ActionRetain, date("2030-01-01")), dErrors.CodeInvalidState))

		cf.Status = StatusDestroyed
		assert.True(t, dErrors.HasCode(cf.CanApply(ActionRetain, date("2030-01-01")), dErrors.CodeInvalidState))
	})
}

func TestApplyDisposition(t *testing.T) {
	now := time.Now()

	cf := settled(t, "2029-01-20")
	require.Equal(t, OutcomeDestroyed, cf.ApplyDisposition(ActionDestroy, now))
	assert.Equal(t, PhaseDestructible, cf.Phase)
	assert.Equal(t, AvailabilityUnavailable, cf.Availability)
	assert.True(t, cf.Status.IsFinal())

	cf = settled(t, "2029-01-20")
	require.Equal(t, OutcomeRetained, cf.ApplyDisposition(ActionRetain, now))
	assert.Equal(t, PhaseHistorical, cf.Phase)

	cf = closedCaseFile("2024-01-15")
	require.Equal(t, OutcomeTransferred, cf.ApplyDisposition(ActionTransfer, now))
	assert.Equal(t, StatusClosedInCentral, cf.Status)
	assert.Equal(t, PhaseInCentral, cf.Phase)
}
