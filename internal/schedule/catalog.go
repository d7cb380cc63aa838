package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"archivist/internal/records/models"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/sentinel"
)

// Catalog is a retention schedule as kept in a YAML file:
//
//	series:
//	  - code: "100"
//	    name: Contracts
//	    management_years: 2
//	    central_years: 8
//	    disposition: selection
//	    subseries:
//	      - code: "100.1"
//	        name: Public works
//	        central_years: 18
type Catalog struct {
	Series []CatalogSeries `yaml:"series"`
}

type CatalogSeries struct {
	Code              string             `yaml:"code"`
	Name              string             `yaml:"name"`
	ManagementYears   int                `yaml:"management_years"`
	CentralYears      int                `yaml:"central_years"`
	Disposition       string             `yaml:"disposition"`
	RequiresSubseries bool               `yaml:"requires_subseries"`
	Subseries         []CatalogSubseries `yaml:"subseries"`
}

type CatalogSubseries struct {
	Code            string  `yaml:"code"`
	Name            string  `yaml:"name"`
	ManagementYears *int    `yaml:"management_years"`
	CentralYears    *int    `yaml:"central_years"`
	Disposition     *string `yaml:"disposition"`
}

// ParseCatalog decodes a YAML catalog. Unknown keys are rejected so a typo
// never silently inherits a retention value.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid schedule catalog: "+err.Error())
	}
	return &c, nil
}

// ImportReport counts what an import created and what it found already there.
type ImportReport struct {
	SeriesCreated    int `json:"series_created"`
	SeriesSkipped    int `json:"series_skipped"`
	SubseriesCreated int `json:"subseries_created"`
	SubseriesSkipped int `json:"subseries_skipped"`
}

// Import creates every catalog entry missing from the store, in one
// transaction. Existing entries are matched by code and left unchanged:
// retention values already applied to case files are never rewritten.
func (s *Service) Import(ctx context.Context, c *Catalog) (*ImportReport, error) {
	report := &ImportReport{}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, entry := range c.Series {
			series, created, err := s.importSeries(txCtx, entry)
			if err != nil {
				return err
			}
			if created {
				report.SeriesCreated++
			} else {
				report.SeriesSkipped++
			}
			existing, err := s.store.ListSubseries(txCtx, series.ID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subseries")
			}
			known := make(map[string]bool, len(existing))
			for _, sub := range existing {
				known[sub.Code] = true
			}
			for _, subEntry := range entry.Subseries {
				if known[subEntry.Code] {
					report.SubseriesSkipped++
					continue
				}
				in, err := subEntry.input()
				if err != nil {
					return err
				}
				if _, err := s.createSubseries(txCtx, series, in); err != nil {
					return fmt.Errorf("subseries %s: %w", subEntry.Code, err)
				}
				known[subEntry.Code] = true
				report.SubseriesCreated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "retention schedule imported",
		"series_created", report.SeriesCreated,
		"series_skipped", report.SeriesSkipped,
		"subseries_created", report.SubseriesCreated,
		"subseries_skipped", report.SubseriesSkipped,
	)
	return report, nil
}

func (s *Service) importSeries(ctx context.Context, entry CatalogSeries) (*models.Series, bool, error) {
	series, err := s.store.GetSeriesByCode(ctx, entry.Code)
	if err == nil {
		return series, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load series")
	}
	disposition, err := models.ParseFinalDisposition(entry.Disposition)
	if err != nil {
		return nil, false, fmt.Errorf("series %s: %w", entry.Code, err)
	}
	series, err = s.createSeries(ctx, SeriesInput{
		Code:                     entry.Code,
		Name:                     entry.Name,
		ManagementRetentionYears: entry.ManagementYears,
		CentralRetentionYears:    entry.CentralYears,
		FinalDisposition:         disposition,
		RequiresSubseries:        entry.RequiresSubseries,
	})
	if err != nil {
		return nil, false, fmt.Errorf("series %s: %w", entry.Code, err)
	}
	return series, true, nil
}

func (c CatalogSubseries) input() (SubseriesInput, error) {
	in := SubseriesInput{
		Code:                     c.Code,
		Name:                     c.Name,
		ManagementRetentionYears: c.ManagementYears,
		CentralRetentionYears:    c.CentralYears,
	}
	if c.Disposition != nil {
		d, err := models.ParseFinalDisposition(*c.Disposition)
		if err != nil {
			return SubseriesInput{}, fmt.Errorf("subseries %s: %w", c.Code, err)
		}
		in.FinalDisposition = &d
	}
	return in, nil
}
