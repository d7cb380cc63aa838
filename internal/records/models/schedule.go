package models

import (
	"strings"
	"time"

	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

// FinalDisposition is what happens to a case file once central retention ends.
type FinalDisposition string

const (
	DispositionConservation FinalDisposition = "conservation"
	DispositionDestruction  FinalDisposition = "destruction"
	DispositionSelection    FinalDisposition = "selection"
)

func (d FinalDisposition) IsValid() bool {
	switch d {
	case DispositionConservation, DispositionDestruction, DispositionSelection:
		return true
	}
	return false
}

func ParseFinalDisposition(s string) (FinalDisposition, error) {
	d := FinalDisposition(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown final disposition %q", s)
	}
	return d, nil
}

// Series is a records-retention schedule entry. Its retention numbers apply
// to every case file filed under it unless a subseries overrides them.
type Series struct {
	ID                       id.SeriesID      `json:"id"`
	Code                     string           `json:"code"`
	Name                     string           `json:"name"`
	ManagementRetentionYears int              `json:"management_retention_years"`
	CentralRetentionYears    int              `json:"central_retention_years"`
	FinalDisposition         FinalDisposition `json:"final_disposition"`
	RequiresSubseries        bool             `json:"requires_subseries"`
	CreatedAt                time.Time        `json:"created_at"`
}

// Subseries narrows a series. Nil retention fields inherit from the series.
type Subseries struct {
	ID                       id.SubseriesID    `json:"id"`
	SeriesID                 id.SeriesID       `json:"series_id"`
	Code                     string            `json:"code"`
	Name                     string            `json:"name"`
	ManagementRetentionYears *int              `json:"management_retention_years,omitempty"`
	CentralRetentionYears    *int              `json:"central_retention_years,omitempty"`
	FinalDisposition         *FinalDisposition `json:"final_disposition,omitempty"`
	CreatedAt                time.Time         `json:"created_at"`
}

// Retention is the single effective retention pair and disposition of a
// case file.
type Retention struct {
	ManagementYears int              `json:"management_years"`
	CentralYears    int              `json:"central_years"`
	Disposition     FinalDisposition `json:"disposition"`
}

// EffectiveRetention resolves the subseries override against its series.
func EffectiveRetention(series Series, sub *Subseries) Retention {
	r := Retention{
		ManagementYears: series.ManagementRetentionYears,
		CentralYears:    series.CentralRetentionYears,
		Disposition:     series.FinalDisposition,
	}
	if sub == nil {
		return r
	}
	if sub.ManagementRetentionYears != nil {
		r.ManagementYears = *sub.ManagementRetentionYears
	}
	if sub.CentralRetentionYears != nil {
		r.CentralYears = *sub.CentralRetentionYears
	}
	if sub.FinalDisposition != nil {
		r.Disposition = *sub.FinalDisposition
	}
	return r
}

// Validate checks the reference data invariants of a series.
func (s *Series) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return dErrors.New(dErrors.CodeValidation, "series code is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "series name is required")
	}
	if s.ManagementRetentionYears < 0 || s.CentralRetentionYears < 0 {
		return dErrors.New(dErrors.CodeValidation, "retention years cannot be negative")
	}
	if !s.FinalDisposition.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "final disposition is required")
	}
	return nil
}
