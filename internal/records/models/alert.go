package models

import (
	"time"

	id "archivist/pkg/domain"
)

// AlertKind names the deadline an alert warns about.
type AlertKind string

const (
	AlertApproachingManagementExit AlertKind = "approaching_management_exit"
	AlertApproachingCentralExit    AlertKind = "approaching_central_exit"
	AlertApproachingDisposition    AlertKind = "approaching_disposition"
)

// Alert is an advance warning that a retention deadline is near. The natural
// key (CaseFileID, Kind, Deadline) is unique.
type Alert struct {
	ID         id.AlertID    `json:"id"`
	CaseFileID id.CaseFileID `json:"case_file_id"`
	Kind       AlertKind     `json:"kind"`
	RaisedOn   time.Time     `json:"raised_on"`
	Deadline   time.Time     `json:"deadline"`
	Read       bool          `json:"read"`
	ReadAt     *time.Time    `json:"read_at,omitempty"`
}

// DueAlert reports the alert a case file warrants on today, if its relevant
// deadline falls within leadDays. Only the deadline matching the current
// phase is considered.
func DueAlert(phase Phase, d Deadlines, disposition FinalDisposition, today time.Time, leadDays int) (AlertKind, time.Time, bool) {
	var (
		kind     AlertKind
		deadline time.Time
	)
	switch phase {
	case PhaseInManagement:
		kind, deadline = AlertApproachingManagementExit, d.ManagementEnd
	case PhaseInCentral:
		deadline = d.CentralEnd
		kind = AlertApproachingCentralExit
		if disposition == DispositionDestruction {
			kind = AlertApproachingDisposition
		}
	default:
		return "", time.Time{}, false
	}
	today = Day(today)
	if deadline.Before(today) || deadline.After(today.AddDate(0, 0, leadDays)) {
		return "", time.Time{}, false
	}
	return kind, deadline, true
}
