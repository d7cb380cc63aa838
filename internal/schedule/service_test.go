package schedule

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"archivist/internal/records/models"
	"archivist/internal/records/store/memory"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/audit/publisher"
	auditmemory "archivist/pkg/platform/audit/store/memory"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

type ScheduleSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestScheduleSuite(t *testing.T) {
	suite.Run(t, new(ScheduleSuite))
}

func (s *ScheduleSuite) SetupTest() {
	s.ctx = requestcontext.WithActor(
		requestcontext.WithTime(context.Background(), time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)),
		"records-admin")
	s.store = memory.New()
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.store, txcontext.NewMemoryRunner(), publisher.New(s.audit), nil)
}

func (s *ScheduleSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), "error: %v", err)
}

func (s *ScheduleSuite) contracts() *models.Series {
	series, err := s.service.CreateSeries(s.ctx, SeriesInput{
		Code: " 100 ", Name: "Contracts", ManagementRetentionYears: 2, CentralRetentionYears: 8,
		FinalDisposition: models.DispositionSelection,
	})
	s.Require().NoError(err)
	return series
}

func (s *ScheduleSuite) TestCreateSeries() {
	series := s.contracts()
	s.Equal("100", series.Code)

	events, err := s.audit.ListByAction(s.ctx, audit.EventSeriesCreated)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("records-admin", events[0].Actor)

	s.Run("duplicate code", func() {
		_, err := s.service.CreateSeries(s.ctx, SeriesInput{
			Code: "100", Name: "Again", FinalDisposition: models.DispositionConservation,
		})
		s.requireCode(err, dErrors.CodeConflict)
	})

	s.Run("invalid values", func() {
		for _, in := range []SeriesInput{
			{Name: "No code", FinalDisposition: models.DispositionConservation},
			{Code: "300", FinalDisposition: models.DispositionConservation},
			{Code: "300", Name: "Negative", ManagementRetentionYears: -1, FinalDisposition: models.DispositionConservation},
			{Code: "300", Name: "No disposition"},
		} {
			_, err := s.service.CreateSeries(s.ctx, in)
			s.requireCode(err, dErrors.CodeValidation)
		}
	})
}

func (s *ScheduleSuite) TestCreateSubseries() {
	series := s.contracts()
	central := 18
	sub, err := s.service.CreateSubseries(s.ctx, series.ID, SubseriesInput{
		Code: "100.1", Name: "Public works", CentralRetentionYears: &central,
	})
	s.Require().NoError(err)
	s.Equal(series.ID, sub.SeriesID)

	r := models.EffectiveRetention(*series, sub)
	s.Equal(2, r.ManagementYears)
	s.Equal(18, r.CentralYears)

	events, err := s.audit.ListByAction(s.ctx, audit.EventSubseriesCreated)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Contains(events[0].Details, "2+18 years")

	s.Run("unknown series", func() {
		_, err := s.service.CreateSubseries(s.ctx, id.SeriesID(uuid.New()), SubseriesInput{Code: "1", Name: "x"})
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("duplicate code within the series", func() {
		_, err := s.service.CreateSubseries(s.ctx, series.ID, SubseriesInput{Code: "100.1", Name: "Again"})
		s.requireCode(err, dErrors.CodeConflict)
	})

	s.Run("invalid override", func() {
		bad := models.FinalDisposition("burn")
		_, err := s.service.CreateSubseries(s.ctx, series.ID, SubseriesInput{Code: "100.2", Name: "x", FinalDisposition: &bad})
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *ScheduleSuite) TestListSchedule() {
	series := s.contracts()
	_, err := s.service.CreateSeries(s.ctx, SeriesInput{
		Code: "050", Name: "Minutes", FinalDisposition: models.DispositionConservation,
	})
	s.Require().NoError(err)
	_, err = s.service.CreateSubseries(s.ctx, series.ID, SubseriesInput{Code: "100.1", Name: "Public works"})
	s.Require().NoError(err)

	list, err := s.service.ListSchedule(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("050", list[0].Code)
	s.NotNil(list[0].Subseries)
	s.Empty(list[0].Subseries)
	s.Len(list[1].Subseries, 1)
}

const catalogYAML = `
series:
  - code: "100"
    name: Contracts
    management_years: 2
    central_years: 8
    disposition: selection
    subseries:
      - code: "100.1"
        name: Public works
        central_years: 18
      - code: "100.2"
        name: Services
        disposition: destruction
  - code: "200"
    name: Permits
    management_years: 1
    central_years: 4
    disposition: conservation
    requires_subseries: true
    subseries:
      - code: "200.1"
        name: Building
`

func (s *ScheduleSuite) TestImport() {
	catalog, err := ParseCatalog(strings.NewReader(catalogYAML))
	s.Require().NoError(err)

	report, err := s.service.Import(s.ctx, catalog)
	s.Require().NoError(err)
	s.Equal(ImportReport{SeriesCreated: 2, SubseriesCreated: 3}, *report)

	permits, err := s.store.GetSeriesByCode(s.ctx, "200")
	s.Require().NoError(err)
	s.True(permits.RequiresSubseries)

	s.Run("re-import skips what exists", func() {
		report, err := s.service.Import(s.ctx, catalog)
		s.Require().NoError(err)
		s.Equal(ImportReport{SeriesSkipped: 2, SubseriesSkipped: 3}, *report)
	})

	s.Run("new subseries under an existing series", func() {
		more, err := ParseCatalog(strings.NewReader(`
series:
  - code: "100"
    name: Contracts
    disposition: selection
    subseries:
      - code: "100.3"
        name: Leases
`))
		s.Require().NoError(err)
		report, err := s.service.Import(s.ctx, more)
		s.Require().NoError(err)
		s.Equal(ImportReport{SeriesSkipped: 1, SubseriesCreated: 1}, *report)
	})
}

func (s *ScheduleSuite) TestImportRejectsBadEntries() {
	catalog, err := ParseCatalog(strings.NewReader(`
series:
  - code: "300"
    name: Letters
    disposition: shred
`))
	s.Require().NoError(err)
	_, err = s.service.Import(s.ctx, catalog)
	s.requireCode(err, dErrors.CodeValidation)
}
