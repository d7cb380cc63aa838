package handler

import (
	"strings"

	"archivist/internal/container"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

const maxNotesLength = 500

type LocationRequest struct {
	Shelf  string `json:"shelf"`
	Module string `json:"module"`
	Tier   string `json:"tier"`
}

// CreateBoxRequest is the body of POST /boxes.
type CreateBoxRequest struct {
	OfficeID string          `json:"office_id"`
	Capacity int             `json:"capacity"`
	Location LocationRequest `json:"location"`

	parsed container.BoxRequest
}

func (r *CreateBoxRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	office, err := id.ParseOfficeID(r.OfficeID)
	if err != nil {
		return err
	}
	if r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity must be positive")
	}
	r.parsed = container.BoxRequest{
		OfficeID: office,
		Capacity: r.Capacity,
		Location: models.Location{
			Shelf:  strings.TrimSpace(r.Location.Shelf),
			Module: strings.TrimSpace(r.Location.Module),
			Tier:   strings.TrimSpace(r.Location.Tier),
		},
	}
	return nil
}

// CreateFolderRequest is the body of POST /folders.
type CreateFolderRequest struct {
	OfficeID   string `json:"office_id"`
	BoxID      string `json:"box_id,omitempty"`
	CaseFileID string `json:"case_file_id,omitempty"`
	Capacity   int    `json:"capacity"`

	parsed container.FolderRequest
}

func (r *CreateFolderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	office, err := id.ParseOfficeID(r.OfficeID)
	if err != nil {
		return err
	}
	if r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity must be positive")
	}
	r.parsed = container.FolderRequest{OfficeID: office, Capacity: r.Capacity}
	if strings.TrimSpace(r.BoxID) != "" {
		boxID, err := id.ParseBoxID(r.BoxID)
		if err != nil {
			return err
		}
		r.parsed.BoxID = &boxID
	}
	if strings.TrimSpace(r.CaseFileID) != "" {
		caseFileID, err := id.ParseCaseFileID(r.CaseFileID)
		if err != nil {
			return err
		}
		r.parsed.CaseFileID = &caseFileID
	}
	return nil
}

// AssignRequest is the body of POST /packages/{id}/assignments.
type AssignRequest struct {
	CaseFileID string `json:"case_file_id"`
	MarkFull   bool   `json:"mark_full"`
	Notes      string `json:"notes"`

	caseFileID id.CaseFileID
}

func (r *AssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Notes) > maxNotesLength {
		return dErrors.Newf(dErrors.CodeValidation, "notes must be at most %d characters", maxNotesLength)
	}
	caseFileID, err := id.ParseCaseFileID(r.CaseFileID)
	if err != nil {
		return err
	}
	r.caseFileID = caseFileID
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

// ClosePackageRequest is the optional body of POST /packages/{id}/close.
type ClosePackageRequest struct {
	Notes string `json:"notes"`
}

func (r *ClosePackageRequest) Validate() error {
	if len(r.Notes) > maxNotesLength {
		return dErrors.Newf(dErrors.CodeValidation, "notes must be at most %d characters", maxNotesLength)
	}
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}
