// Package domain holds identifier types shared across bounded contexts.
//
// Each identifier is a distinct UUID-backed type so a box ID can never be
// passed where a package ID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "archivist/pkg/domain-errors"
)

type (
	CaseFileID    uuid.UUID
	SeriesID      uuid.UUID
	SubseriesID   uuid.UUID
	OfficeID      uuid.UUID
	BoxID         uuid.UUID
	FolderID      uuid.UUID
	PackageID     uuid.UUID
	DocumentID    uuid.UUID
	AlertID       uuid.UUID
	DispositionID uuid.UUID
)

func parseID[T ~[16]byte](s, kind string) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(parsed), nil
}

func ParseCaseFileID(s string) (CaseFileID, error) {
	return parseID[CaseFileID](s, "case_file_id")
}

func ParseSeriesID(s string) (SeriesID, error) {
	return parseID[SeriesID](s, "series_id")
}

func ParseSubseriesID(s string) (SubseriesID, error) {
	return parseID[SubseriesID](s, "subseries_id")
}

func ParseOfficeID(s string) (OfficeID, error) {
	return parseID[OfficeID](s, "office_id")
}

func ParseBoxID(s string) (BoxID, error) {
	return parseID[BoxID](s, "box_id")
}

func ParseFolderID(s string) (FolderID, error) {
	return parseID[FolderID](s, "folder_id")
}

func ParsePackageID(s string) (PackageID, error) {
	return parseID[PackageID](s, "package_id")
}

func ParseDocumentID(s string) (DocumentID, error) {
	return parseID[DocumentID](s, "document_id")
}

func ParseAlertID(s string) (AlertID, error) {
	return parseID[AlertID](s, "alert_id")
}

func ParseDispositionID(s string) (DispositionID, error) {
	return parseID[DispositionID](s, "disposition_id")
}

func (id CaseFileID) String() string    { return uuid.UUID(id).String() }
func (id SeriesID) String() string      { return uuid.UUID(id).String() }
func (id SubseriesID) String() string   { return uuid.UUID(id).String() }
func (id OfficeID) String() string      { return uuid.UUID(id).String() }
func (id BoxID) String() string         { return uuid.UUID(id).String() }
func (id FolderID) String() string      { return uuid.UUID(id).String() }
func (id PackageID) String() string     { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id AlertID) String() string       { return uuid.UUID(id).String() }
func (id DispositionID) String() string { return uuid.UUID(id).String() }

func (id CaseFileID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SubseriesID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id BoxID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PackageID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets identifiers appear as plain UUID strings in JSON.
func (id CaseFileID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id SeriesID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id SubseriesID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id OfficeID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id BoxID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id FolderID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id PackageID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id AlertID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id DispositionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func unmarshalID[T ~[16]byte](dst *T, text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*dst = T(parsed)
	return nil
}

func (id *CaseFileID) UnmarshalText(b []byte) error    { return unmarshalID(id, b) }
func (id *SeriesID) UnmarshalText(b []byte) error      { return unmarshalID(id, b) }
func (id *SubseriesID) UnmarshalText(b []byte) error   { return unmarshalID(id, b) }
func (id *OfficeID) UnmarshalText(b []byte) error      { return unmarshalID(id, b) }
func (id *BoxID) UnmarshalText(b []byte) error         { return unmarshalID(id, b) }
func (id *FolderID) UnmarshalText(b []byte) error      { return unmarshalID(id, b) }
func (id *PackageID) UnmarshalText(b []byte) error     { return unmarshalID(id, b) }
func (id *DocumentID) UnmarshalText(b []byte) error    { return unmarshalID(id, b) }
func (id *AlertID) UnmarshalText(b []byte) error       { return unmarshalID(id, b) }
func (id *DispositionID) UnmarshalText(b []byte) error { return unmarshalID(id, b) }
