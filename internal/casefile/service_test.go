package casefile

import (
	"time"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
)

func (s *OrchestratorSuite) TestClose() {
	res, err := s.orchestrator.Create(s.ctx, s.physical())
	s.Require().NoError(err)

	s.Run("before opening is rejected", func() {
		_, err := s.service.Close(s.ctx, res.CaseFile.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("closes an active case file", func() {
		cf, err := s.service.Close(s.ctx, res.CaseFile.ID, time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC))
		s.Require().NoError(err)
		s.Equal(models.StatusClosedInManagement, cf.Status)
		s.Require().NotNil(cf.ClosingDate)
		s.Equal(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), *cf.ClosingDate)
		s.Equal(1, s.auditCount(audit.EventCaseFileClosed))
	})

	s.Run("a closed case file cannot close again", func() {
		_, err := s.service.Close(s.ctx, res.CaseFile.ID, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC))
		s.requireCode(err, dErrors.CodeInvalidState)
	})

	s.Run("unknown case file", func() {
		_, err := s.service.Close(s.ctx, id.CaseFileID(uuid.New()), time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC))
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *OrchestratorSuite) TestAddDocument() {
	res, err := s.orchestrator.Create(s.ctx, s.physical())
	s.Require().NoError(err)

	first, err := s.service.AddDocument(s.ctx, res.CaseFile.ID, DocumentInput{Title: "Offer"})
	s.Require().NoError(err)
	second, err := s.service.AddDocument(s.ctx, res.CaseFile.ID, DocumentInput{
		Title:        "Acceptance",
		DocumentDate: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.Equal(1, first.Folio)
	s.Equal(2, second.Folio)
	s.Equal("20240301-0001", first.Number)
	s.Equal("20240301-0002", second.Number)
	s.Equal(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), second.DocumentDate)

	detail, err := s.service.Get(s.ctx, res.CaseFile.ID)
	s.Require().NoError(err)
	s.Require().Len(detail.Documents, 2)
	s.Equal("Offer", detail.Documents[0].Title)

	folder, err := s.store.GetFolder(s.ctx, res.Folder.ID)
	s.Require().NoError(err)
	s.Equal(2, folder.Capacity.Occupancy)

	s.Run("a full folder rejects the document", func() {
		for i := 0; i < 3; i++ {
			_, err := s.service.AddDocument(s.ctx, res.CaseFile.ID, DocumentInput{Title: "Annex"})
			s.Require().NoError(err)
		}
		_, err := s.service.AddDocument(s.ctx, res.CaseFile.ID, DocumentInput{Title: "One too many"})
		s.requireCode(err, dErrors.CodeCapacityExceeded)
	})

	s.Run("electronic case files have no folio limit", func() {
		elec, err := s.orchestrator.Create(s.ctx, CreateRequest{
			OfficeID: s.office, SeriesID: s.contracts.ID, Support: models.SupportElectronic,
		})
		s.Require().NoError(err)
		for i := 0; i < 7; i++ {
			_, err := s.service.AddDocument(s.ctx, elec.CaseFile.ID, DocumentInput{Title: "Scan"})
			s.Require().NoError(err)
		}
	})

	s.Run("final case files take no documents", func() {
		cf, err := s.store.GetCaseFile(s.ctx, res.CaseFile.ID)
		s.Require().NoError(err)
		cf.Status = models.StatusDestroyed
		s.Require().NoError(s.store.UpdateCaseFile(s.ctx, cf))
		_, err = s.service.AddDocument(s.ctx, res.CaseFile.ID, DocumentInput{Title: "Late"})
		s.requireCode(err, dErrors.CodeInvalidState)
	})
}

func (s *OrchestratorSuite) TestGet() {
	s.Run("unknown case file", func() {
		_, err := s.service.Get(s.ctx, id.CaseFileID(uuid.New()))
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("no documents renders an empty list", func() {
		res, err := s.orchestrator.Create(s.ctx, s.physical())
		s.Require().NoError(err)
		detail, err := s.service.Get(s.ctx, res.CaseFile.ID)
		s.Require().NoError(err)
		s.NotNil(detail.Documents)
		s.Empty(detail.Documents)
	})
}
