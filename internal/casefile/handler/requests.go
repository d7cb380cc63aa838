package handler

import (
	"strings"
	"time"

	"archivist/internal/casefile"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

const maxCustomFields = 20

type CustomFieldRequest struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	DuplicateSensitive bool   `json:"duplicate_sensitive"`
}

type DocumentRequest struct {
	Title        string `json:"title"`
	DocumentDate string `json:"document_date,omitempty"`

	parsed casefile.DocumentInput
}

func (r *DocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	date, err := parseOptionalDate("document_date", r.DocumentDate)
	if err != nil {
		return err
	}
	r.parsed = casefile.DocumentInput{Title: title}
	if date != nil {
		r.parsed.DocumentDate = *date
	}
	return nil
}

// CreateRequest is the body of POST /case-files.
type CreateRequest struct {
	OfficeID        string               `json:"office_id"`
	SeriesID        string               `json:"series_id"`
	SubseriesID     string               `json:"subseries_id,omitempty"`
	SupportType     string               `json:"support_type"`
	OpeningDate     string               `json:"opening_date,omitempty"`
	ClosingDate     string               `json:"closing_date,omitempty"`
	CustomFields    []CustomFieldRequest `json:"custom_fields"`
	AllowDuplicates bool                 `json:"allow_duplicates"`
	BoxID           string               `json:"box_id,omitempty"`
	InitialDocument *DocumentRequest     `json:"initial_document,omitempty"`

	parsed casefile.CreateRequest
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	office, err := id.ParseOfficeID(r.OfficeID)
	if err != nil {
		return err
	}
	series, err := id.ParseSeriesID(r.SeriesID)
	if err != nil {
		return err
	}
	support, err := models.ParseSupportType(r.SupportType)
	if err != nil {
		return err
	}
	if len(r.CustomFields) > maxCustomFields {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d custom fields are allowed", maxCustomFields)
	}
	r.parsed = casefile.CreateRequest{
		OfficeID:        office,
		SeriesID:        series,
		Support:         support,
		AllowDuplicates: r.AllowDuplicates,
	}
	if strings.TrimSpace(r.SubseriesID) != "" {
		sub, err := id.ParseSubseriesID(r.SubseriesID)
		if err != nil {
			return err
		}
		r.parsed.SubseriesID = &sub
	}
	if strings.TrimSpace(r.BoxID) != "" {
		if support != models.SupportPhysical {
			return dErrors.New(dErrors.CodeValidation, "box_id applies to physical case files only")
		}
		box, err := id.ParseBoxID(r.BoxID)
		if err != nil {
			return err
		}
		r.parsed.BoxID = &box
	}
	if r.parsed.OpeningDate, err = parseOptionalDate("opening_date", r.OpeningDate); err != nil {
		return err
	}
	if r.parsed.ClosingDate, err = parseOptionalDate("closing_date", r.ClosingDate); err != nil {
		return err
	}
	for _, f := range r.CustomFields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return dErrors.New(dErrors.CodeValidation, "custom field name is required")
		}
		r.parsed.CustomFields = append(r.parsed.CustomFields, models.CustomField{
			Name:               name,
			Value:              strings.TrimSpace(f.Value),
			DuplicateSensitive: f.DuplicateSensitive,
		})
	}
	if r.InitialDocument != nil {
		if err := r.InitialDocument.Validate(); err != nil {
			return err
		}
		doc := r.InitialDocument.parsed
		r.parsed.InitialDocument = &doc
	}
	return nil
}

// CloseRequest is the body of POST /case-files/{id}/close. The closing date
// defaults to the request day.
type CloseRequest struct {
	ClosingDate string `json:"closing_date,omitempty"`

	parsed *time.Time
}

func (r *CloseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var err error
	r.parsed, err = parseOptionalDate("closing_date", r.ClosingDate)
	return err
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}
