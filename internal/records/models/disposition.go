package models

import (
	"strings"
	"time"

	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

// DispositionAction is the operator's choice for a batch of case files.
type DispositionAction string

const (
	ActionRetain   DispositionAction = "retain"
	ActionDestroy  DispositionAction = "destroy"
	ActionTransfer DispositionAction = "transfer"
)

func ParseDispositionAction(s string) (DispositionAction, error) {
	switch a := DispositionAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionRetain, ActionDestroy, ActionTransfer:
		return a, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown disposition action %q", s)
}

// Track is the archive a case file sits in when an action is taken.
type Track string

const (
	TrackManagement Track = "management"
	TrackCentral    Track = "central"
)

// Outcome is what a disposition did to the case file.
type Outcome string

const (
	OutcomeRetained    Outcome = "retained"
	OutcomeDestroyed   Outcome = "destroyed"
	OutcomeTransferred Outcome = "transferred"
)

// DispositionRecord is one append-only ledger row.
type DispositionRecord struct {
	ID          id.DispositionID  `json:"id"`
	CaseFileID  id.CaseFileID     `json:"case_file_id"`
	Track       Track             `json:"track"`
	Deadline    time.Time         `json:"deadline"`
	Action      DispositionAction `json:"action"`
	Disposition FinalDisposition  `json:"disposition"`
	Outcome     Outcome           `json:"outcome"`
	Operator    string            `json:"operator"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CurrentTrack returns the archive the case file is in and that archive's
// exit deadline.
func (c *CaseFile) CurrentTrack() (Track, time.Time) {
	switch c.Phase {
	case PhaseInCentral, PhaseHistorical, PhaseDestructible:
		if c.CentralEndDate != nil {
			return TrackCentral, *c.CentralEndDate
		}
		return TrackCentral, time.Time{}
	default:
		if c.ManagementEndDate != nil {
			return TrackManagement, *c.ManagementEndDate
		}
		return TrackManagement, time.Time{}
	}
}

// CanApply validates the preconditions of action on today.
func (c *CaseFile) CanApply(action DispositionAction, today time.Time) error {
	if c.Status.IsFinal() {
		return dErrors.Newf(dErrors.CodeInvalidState, "case file %s is already %s", c.Code, c.Status)
	}
	switch action {
	case ActionTransfer:
		if c.Status != StatusClosedInManagement {
			return dErrors.Newf(dErrors.CodeInvalidState, "case file %s is %s, transfer requires closed_in_management", c.Code, c.Status)
		}
		// The engine derives InCentral from this deadline; an earlier transfer
		// would be recomputed back to InManagement.
		if c.ManagementEndDate == nil || Day(today).Before(Day(*c.ManagementEndDate)) {
			return dErrors.Newf(dErrors.CodeInvalidState, "case file %s has not reached its management retention deadline", c.Code)
		}
		return nil
	case ActionRetain, ActionDestroy:
		if c.Status == StatusActive {
			return dErrors.Newf(dErrors.CodeInvalidState, "case file %s is still active", c.Code)
		}
		_, deadline := c.CurrentTrack()
		if deadline.IsZero() || Day(today).Before(Day(deadline)) {
			return dErrors.Newf(dErrors.CodeInvalidState, "case file %s has not reached its retention deadline", c.Code)
		}
		return nil
	}
	return dErrors.Newf(dErrors.CodeValidation, "unknown disposition action %q", action)
}

// ApplyDisposition mutates the case file for action and returns its outcome.
// Call CanApply first.
func (c *CaseFile) ApplyDisposition(action DispositionAction, now time.Time) Outcome {
	c.UpdatedAt = now
	switch action {
	case ActionDestroy:
		c.Phase = PhaseDestructible
		c.Status = StatusDestroyed
		c.Availability = AvailabilityUnavailable
		return OutcomeDestroyed
	case ActionTransfer:
		c.Phase = PhaseInCentral
		c.Status = StatusClosedInCentral
		return OutcomeTransferred
	default:
		c.Phase = PhaseHistorical
		c.Status = StatusConserved
		return OutcomeRetained
	}
}
