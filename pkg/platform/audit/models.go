package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with records-management significance:
	// dispositions, destruction snapshots, closing a case file.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity such as container placement
	// and scheduled engine runs.
	CategoryOperations EventCategory = "operations"
)

// Event is one append-only audit entry: who did what to which entity.
type Event struct {
	ID         string
	Category   EventCategory
	Timestamp  time.Time
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	// Details is free text shown to auditors.
	Details   string
	RequestID string
}

// Entity types.
const (
	EntityCaseFile  = "case_file"
	EntityDocument  = "document"
	EntityBox       = "box"
	EntityFolder    = "folder"
	EntityPackage   = "package"
	EntitySeries    = "series"
	EntitySubseries = "subseries"
	EntityRetention = "retention_run"
)

type AuditEvent string

const (
	// Case file events
	EventCaseFileCreated         AuditEvent = "case_file_created"
	EventCaseFileOpeningOverride AuditEvent = "case_file_opening_date_overridden"
	EventCaseFileClosed          AuditEvent = "case_file_closed"
	EventDocumentAdded           AuditEvent = "document_added"

	// Container events
	EventBoxCreated      AuditEvent = "box_created"
	EventFolderCreated   AuditEvent = "folder_created"
	EventPackageOpened   AuditEvent = "package_opened"
	EventPackageAssigned AuditEvent = "package_assigned"
	EventPackageClosed   AuditEvent = "package_closed"
	EventPackageReopened AuditEvent = "package_reopened"

	// Schedule events
	EventSeriesCreated    AuditEvent = "series_created"
	EventSubseriesCreated AuditEvent = "subseries_created"

	// Retention events
	EventRetentionRun       AuditEvent = "retention_run_completed"
	EventDispositionApplied AuditEvent = "disposition_applied"
	EventCaseFileDestroyed  AuditEvent = "case_file_destroyed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCaseFileCreated:         CategoryCompliance,
	EventCaseFileOpeningOverride: CategoryCompliance,
	EventCaseFileClosed:          CategoryCompliance,
	EventDispositionApplied:      CategoryCompliance,
	EventCaseFileDestroyed:       CategoryCompliance,
	EventSeriesCreated:           CategoryCompliance,
	EventSubseriesCreated:        CategoryCompliance,

	EventDocumentAdded:   CategoryOperations,
	EventBoxCreated:      CategoryOperations,
	EventFolderCreated:   CategoryOperations,
	EventPackageOpened:   CategoryOperations,
	EventPackageAssigned: CategoryOperations,
	EventPackageClosed:   CategoryOperations,
	EventPackageReopened: CategoryOperations,
	EventRetentionRun:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations write in the transaction
// carried by ctx when there is one, so an entry commits or rolls back with
// the change it describes.
type Store interface {
	Append(ctx context.Context, event Event) error
}
