package models

import (
	"strings"
	"time"

	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

// Phase is a case file's position in the retention lifecycle.
type Phase string

const (
	PhaseActive       Phase = "active"
	PhaseInManagement Phase = "in_management"
	PhaseInCentral    Phase = "in_central"
	PhaseHistorical   Phase = "historical"
	PhaseDestructible Phase = "destructible"
)

// AdministrativeStatus is the user-facing status. It mostly mirrors the
// phase, but entering closed_in_management is driven by closing the case
// file while closed_in_central and the terminal statuses are driven by the
// phase engine.
type AdministrativeStatus string

const (
	StatusActive             AdministrativeStatus = "active"
	StatusClosedInManagement AdministrativeStatus = "closed_in_management"
	StatusClosedInCentral    AdministrativeStatus = "closed_in_central"
	StatusHistorical         AdministrativeStatus = "historical"
	StatusDestructible       AdministrativeStatus = "destructible"
	StatusConserved          AdministrativeStatus = "conserved"
	StatusDestroyed          AdministrativeStatus = "destroyed"
)

// IsFinal reports whether an operator disposition has settled the case file.
// The phase engine never revisits final case files.
func (s AdministrativeStatus) IsFinal() bool {
	return s == StatusConserved || s == StatusDestroyed
}

// Availability tracks whether the physical or electronic file can be consulted.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLoaned      Availability = "loaned"
	AvailabilityUnavailable Availability = "unavailable"
)

// SupportType is the medium of a case file.
type SupportType string

const (
	SupportPhysical   SupportType = "physical"
	SupportElectronic SupportType = "electronic"
)

func ParseSupportType(s string) (SupportType, error) {
	switch t := SupportType(strings.ToLower(strings.TrimSpace(s))); t {
	case SupportPhysical, SupportElectronic:
		return t, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown support type %q", s)
}

// CustomField is an office-defined metadata value. Duplicate-sensitive fields
// must be unique among the office's open case files.
type CustomField struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	DuplicateSensitive bool   `json:"duplicate_sensitive,omitempty"`
}

// Deadlines are the derived retention dates of a case file.
type Deadlines struct {
	RetentionStart time.Time `json:"retention_start_date"`
	ManagementEnd  time.Time `json:"management_end_date"`
	CentralEnd     time.Time `json:"central_end_date"`
}

// CaseFile (expediente) aggregates documents sharing a retention schedule entry.
//
// Invariants:
//   - OpeningDate is always set; ClosingDate, when set, is not before it
//   - RetentionStart, ManagementEnd and CentralEnd are derived, never input
//   - Final statuses (conserved, destroyed) are only set by a disposition
type CaseFile struct {
	ID                    id.CaseFileID        `json:"id"`
	Code                  string               `json:"code"`
	Name                  string               `json:"name"`
	OfficeID              id.OfficeID          `json:"office_id"`
	SeriesID              id.SeriesID          `json:"series_id"`
	SubseriesID           *id.SubseriesID      `json:"subseries_id,omitempty"`
	Support               SupportType          `json:"support_type"`
	OpeningDate           time.Time            `json:"opening_date"`
	ClosingDate           *time.Time           `json:"closing_date,omitempty"`
	FirstDocumentDate     *time.Time           `json:"first_document_date,omitempty"`
	RetentionStartDate    *time.Time           `json:"retention_start_date,omitempty"`
	ManagementEndDate     *time.Time           `json:"management_end_date,omitempty"`
	CentralEndDate        *time.Time           `json:"central_end_date,omitempty"`
	Phase                 Phase                `json:"lifecycle_phase"`
	Status                AdministrativeStatus `json:"administrative_status"`
	Availability          Availability         `json:"availability"`
	FolderID              *id.FolderID         `json:"folder_id,omitempty"`
	PackageID             *id.PackageID        `json:"package_id,omitempty"`
	CustomFields          []CustomField        `json:"custom_fields,omitempty"`
	OpeningDateOverridden bool                 `json:"opening_date_overridden,omitempty"`
	CreatedBy             string               `json:"created_by"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// Lifecycle is the slice of a case file the phase engine owns.
type Lifecycle struct {
	Deadlines
	Phase  Phase
	Status AdministrativeStatus
}

// CurrentLifecycle returns the stored lifecycle, with zero dates where the
// engine has not derived them yet.
func (c *CaseFile) CurrentLifecycle() Lifecycle {
	l := Lifecycle{Phase: c.Phase, Status: c.Status}
	if c.RetentionStartDate != nil {
		l.RetentionStart = *c.RetentionStartDate
	}
	if c.ManagementEndDate != nil {
		l.ManagementEnd = *c.ManagementEndDate
	}
	if c.CentralEndDate != nil {
		l.CentralEnd = *c.CentralEndDate
	}
	return l
}

// ApplyLifecycle stores an engine result on the case file.
func (c *CaseFile) ApplyLifecycle(l Lifecycle, now time.Time) {
	start, mgmt, central := l.RetentionStart, l.ManagementEnd, l.CentralEnd
	c.RetentionStartDate = &start
	c.ManagementEndDate = &mgmt
	c.CentralEndDate = &central
	c.Phase = l.Phase
	c.Status = l.Status
	c.UpdatedAt = now
}

// CanClose checks that an Active case file can be closed on closingDate.
func (c *CaseFile) CanClose(closingDate time.Time) error {
	if c.Status != StatusActive {
		return dErrors.Newf(dErrors.CodeInvalidState, "case file %s is %s, only active case files can be closed", c.Code, c.Status)
	}
	if closingDate.Before(c.OpeningDate) {
		return dErrors.New(dErrors.CodeValidation, "closing date cannot precede opening date")
	}
	return nil
}

// ApplyClose sets the closing date and moves the status to closed in the
// management archive. The phase follows on the next engine run.
func (c *CaseFile) ApplyClose(closingDate, now time.Time) {
	d := closingDate
	c.ClosingDate = &d
	c.Status = StatusClosedInManagement
	c.UpdatedAt = now
}

// FirstCustomValue returns the first non-empty custom field value.
func (c *CaseFile) FirstCustomValue() string {
	for _, f := range c.CustomFields {
		if v := strings.TrimSpace(f.Value); v != "" {
			return v
		}
	}
	return ""
}

// DisplayName joins the non-empty parts with " - ".
func DisplayName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " - ")
}
