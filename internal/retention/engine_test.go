package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"archivist/internal/platform/config"
	"archivist/internal/records/models"
	"archivist/internal/records/store/memory"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/audit/publisher"
	auditmemory "archivist/pkg/platform/audit/store/memory"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

type EngineSuite struct {
	suite.Suite
	ctx         context.Context
	store       *memory.Store
	audit       *auditmemory.InMemoryStore
	engine      *Engine
	destruction *models.Series
	conserve    *models.Series
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2028, 12, 25, 2, 0, 0, 0, time.UTC))
	s.store = memory.New()
	s.audit = auditmemory.NewInMemoryStore()
	s.engine = s.newEngine(s.store, 500)

	s.destruction = &models.Series{ID: id.SeriesID(uuid.New()), Code: "200", Name: "Invoices",
		ManagementRetentionYears: 2, CentralRetentionYears: 3, FinalDisposition: models.DispositionDestruction}
	s.conserve = &models.Series{ID: id.SeriesID(uuid.New()), Code: "300", Name: "Minutes",
		ManagementRetentionYears: 2, CentralRetentionYears: 3, FinalDisposition: models.DispositionConservation}
	s.Require().NoError(s.store.CreateSeries(s.ctx, s.destruction))
	s.Require().NoError(s.store.CreateSeries(s.ctx, s.conserve))
}

func (s *EngineSuite) newEngine(store Store, batch int) *Engine {
	return NewEngine(store, txcontext.NewMemoryRunner(), publisher.New(s.audit),
		WithConfig(config.RetentionConfig{BatchSize: batch, AlertLeadDays: 30}))
}

func (s *EngineSuite) caseFile(series *models.Series, status models.AdministrativeStatus, opening time.Time, closing *time.Time) *models.CaseFile {
	cf := &models.CaseFile{
		ID:          id.CaseFileID(uuid.New()),
		Code:        uuid.NewString(),
		SeriesID:    series.ID,
		Support:     models.SupportElectronic,
		OpeningDate: opening,
		ClosingDate: closing,
		Status:      status,
		Phase:       models.PhaseActive,
	}
	s.Require().NoError(s.store.CreateCaseFile(s.ctx, cf))
	return cf
}

func (s *EngineSuite) reload(cf *models.CaseFile) *models.CaseFile {
	got, err := s.store.GetCaseFile(s.ctx, cf.ID)
	s.Require().NoError(err)
	return got
}

func (s *EngineSuite) alerts() []*models.Alert {
	alerts, err := s.store.ListAlerts(s.ctx, false, 0)
	s.Require().NoError(err)
	return alerts
}

func (s *EngineSuite) TestDeadlinesAndDispositionAlert() {
	cf := s.caseFile(s.destruction, models.StatusClosedInManagement, date(2023, 6, 1), ptr(date(2024, 1, 15)))

	report, err := s.engine.Run(s.ctx, date(2028, 12, 25))
	s.Require().NoError(err)
	s.Equal(1, report.Scanned)
	s.Equal(1, report.Updated)
	s.Equal(1, report.AlertsRaised)

	got := s.reload(cf)
	s.Require().NotNil(got.ManagementEndDate)
	s.Require().NotNil(got.CentralEndDate)
	s.Equal(date(2024, 1, 15), *got.RetentionStartDate)
	s.Equal(date(2026, 1, 15), *got.ManagementEndDate)
	s.Equal(date(2029, 1, 15), *got.CentralEndDate)
	s.Equal(models.PhaseInCentral, got.Phase)
	s.Equal(models.StatusClosedInCentral, got.Status)

	alerts := s.alerts()
	s.Require().Len(alerts, 1)
	s.Equal(models.AlertApproachingDisposition, alerts[0].Kind)
	s.Equal(date(2029, 1, 15), alerts[0].Deadline)
	s.Equal(date(2028, 12, 25), alerts[0].RaisedOn)

	s.Run("second run the same day changes nothing", func() {
		before := s.reload(cf)
		report, err := s.engine.Run(s.ctx, date(2028, 12, 25))
		s.Require().NoError(err)
		s.Zero(report.Updated)
		s.Zero(report.AlertsRaised)
		s.Len(s.alerts(), 1)
		s.Equal(before, s.reload(cf))
	})

	s.Run("past central end becomes destructible", func() {
		report, err := s.engine.Run(s.ctx, date(2029, 1, 20))
		s.Require().NoError(err)
		s.Equal(1, report.Updated)
		got := s.reload(cf)
		s.Equal(models.PhaseDestructible, got.Phase)
		s.Equal(models.StatusDestructible, got.Status)
		s.Len(s.alerts(), 1)
	})
}

func (s *EngineSuite) TestConservationBecomesHistorical() {
	cf := s.caseFile(s.conserve, models.StatusClosedInManagement, date(2020, 1, 1), ptr(date(2020, 2, 1)))

	_, err := s.engine.Run(s.ctx, date(2026, 3, 1))
	s.Require().NoError(err)
	got := s.reload(cf)
	s.Equal(models.PhaseHistorical, got.Phase)
	s.Equal(models.StatusHistorical, got.Status)
}

func (s *EngineSuite) TestClosedCaseFileStaysInManagement() {
	cf := s.caseFile(s.conserve, models.StatusClosedInManagement, date(2024, 1, 1), ptr(date(2024, 6, 30)))

	report, err := s.engine.Run(s.ctx, date(2024, 7, 1))
	s.Require().NoError(err)
	s.Zero(report.AlertsRaised)
	got := s.reload(cf)
	s.Equal(models.PhaseInManagement, got.Phase)
	s.Equal(models.StatusClosedInManagement, got.Status)

	s.Run("management exit alert inside the lead window", func() {
		report, err := s.engine.Run(s.ctx, date(2026, 6, 10))
		s.Require().NoError(err)
		s.Equal(1, report.AlertsRaised)
		alerts := s.alerts()
		s.Require().Len(alerts, 1)
		s.Equal(models.AlertApproachingManagementExit, alerts[0].Kind)
		s.Equal(date(2026, 6, 30), alerts[0].Deadline)
	})
}

func (s *EngineSuite) TestActiveStatusKeepsActivePhase() {
	cf := s.caseFile(s.destruction, models.StatusActive, date(2010, 1, 1), nil)

	_, err := s.engine.Run(s.ctx, date(2028, 12, 25))
	s.Require().NoError(err)
	got := s.reload(cf)
	s.Equal(models.PhaseActive, got.Phase)
	s.Equal(models.StatusActive, got.Status)
	s.Empty(s.alerts())
}

func (s *EngineSuite) TestBackfillsFirstDocumentDate() {
	cf := s.caseFile(s.conserve, models.StatusActive, date(2024, 3, 1), nil)
	for i, d := range []time.Time{date(2024, 2, 20), date(2024, 2, 10)} {
		s.Require().NoError(s.store.CreateDocument(s.ctx, &models.Document{
			ID:           id.DocumentID(uuid.New()),
			CaseFileID:   cf.ID,
			Number:       models.FormatDocumentNumber(d, int64(i+1)),
			Folio:        i + 1,
			DocumentDate: d,
		}))
	}
	untouched := s.caseFile(s.conserve, models.StatusActive, date(2024, 3, 1), nil)

	report, err := s.engine.Run(s.ctx, date(2024, 4, 1))
	s.Require().NoError(err)
	s.Equal(1, report.Backfilled)

	got := s.reload(cf)
	s.Require().NotNil(got.FirstDocumentDate)
	s.Equal(date(2024, 2, 10), *got.FirstDocumentDate)
	s.Equal(date(2024, 2, 10), *got.RetentionStartDate)
	s.Nil(s.reload(untouched).FirstDocumentDate)
	s.Equal(date(2024, 3, 1), *s.reload(untouched).RetentionStartDate)
}

func (s *EngineSuite) TestSubseriesOverride() {
	sub := &models.Subseries{ID: id.SubseriesID(uuid.New()), SeriesID: s.conserve.ID, Code: "300.1", Name: "Board",
		ManagementRetentionYears: ptr(5)}
	s.Require().NoError(s.store.CreateSubseries(s.ctx, sub))
	cf := s.caseFile(s.conserve, models.StatusClosedInManagement, date(2020, 1, 1), ptr(date(2020, 1, 1)))
	cf.SubseriesID = &sub.ID
	s.Require().NoError(s.store.UpdateCaseFile(s.ctx, cf))

	_, err := s.engine.Run(s.ctx, date(2024, 1, 1))
	s.Require().NoError(err)
	got := s.reload(cf)
	s.Equal(date(2025, 1, 1), *got.ManagementEndDate)
	s.Equal(date(2028, 1, 1), *got.CentralEndDate)
	s.Equal(models.PhaseInManagement, got.Phase)
}

func (s *EngineSuite) TestFinalCaseFilesAreSkipped() {
	cf := s.caseFile(s.destruction, models.StatusDestroyed, date(2000, 1, 1), ptr(date(2000, 1, 1)))

	report, err := s.engine.Run(s.ctx, date(2028, 12, 25))
	s.Require().NoError(err)
	s.Zero(report.Scanned)
	s.Equal(models.PhaseActive, s.reload(cf).Phase)
}

func (s *EngineSuite) TestPagesThroughEveryCaseFile() {
	engine := s.newEngine(s.store, 2)
	for i := 0; i < 5; i++ {
		s.caseFile(s.conserve, models.StatusClosedInManagement, date(2024, 1, 1), ptr(date(2024, 2, 1)))
	}

	report, err := engine.Run(s.ctx, date(2024, 3, 1))
	s.Require().NoError(err)
	s.Equal(5, report.Scanned)
	s.Equal(5, report.Updated)
}

// brokenSeriesStore fails schedule lookups for one series.
type brokenSeriesStore struct {
	*memory.Store
	broken id.SeriesID
}

func (b *brokenSeriesStore) GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error) {
	if seriesID == b.broken {
		return nil, errors.New("connection reset")
	}
	return b.Store.GetSeries(ctx, seriesID)
}

func (s *EngineSuite) TestFailedCaseFileDoesNotStopTheRun() {
	bad := s.caseFile(s.destruction, models.StatusClosedInManagement, date(2024, 1, 1), ptr(date(2024, 2, 1)))
	good := s.caseFile(s.conserve, models.StatusClosedInManagement, date(2024, 1, 1), ptr(date(2024, 2, 1)))
	engine := s.newEngine(&brokenSeriesStore{Store: s.store, broken: s.destruction.ID}, 500)

	report, err := engine.Run(s.ctx, date(2024, 3, 1))
	s.Require().NoError(err)
	s.Equal(2, report.Scanned)
	s.Equal(1, report.Failed)
	s.Equal(1, report.Updated)
	s.Equal(models.PhaseInManagement, s.reload(good).Phase)
	s.Nil(s.reload(bad).RetentionStartDate)
}

func (s *EngineSuite) TestRunIsAudited() {
	s.caseFile(s.conserve, models.StatusClosedInManagement, date(2024, 1, 1), ptr(date(2024, 6, 30)))

	_, err := s.engine.Run(s.ctx, date(2028, 12, 25))
	s.Require().NoError(err)

	events, err := s.audit.ListByAction(s.ctx, audit.EventRetentionRun)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("2028-12-25", events[0].EntityID)
	s.Equal(requestcontext.SystemActor, events[0].Actor)

	s.Run("a run with nothing to change is not audited", func() {
		report, err := s.engine.Run(s.ctx, date(2028, 12, 25))
		s.Require().NoError(err)
		s.Zero(report.Updated)

		events, err := s.audit.ListByAction(s.ctx, audit.EventRetentionRun)
		s.Require().NoError(err)
		s.Len(events, 1)
	})
}

func (s *EngineSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.engine.Run(ctx, date(2028, 12, 25))
	s.Require().Error(err)
}
