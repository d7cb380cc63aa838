package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/sentinel"
)

func (s *Store) CreateCaseFile(_ context.Context, cf *models.CaseFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[cf.SeriesID]; !ok {
		return notFound("series")
	}
	for _, existing := range s.caseFiles {
		if existing.Code == cf.Code {
			return conflict("case file code")
		}
	}
	s.caseFiles[cf.ID] = cloneCaseFile(cf)
	return nil
}

func (s *Store) GetCaseFile(_ context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cf, ok := s.caseFiles[caseFileID]
	if !ok {
		return nil, notFound("case file")
	}
	return cloneCaseFile(cf), nil
}

func (s *Store) GetCaseFileForUpdate(ctx context.Context, caseFileID id.CaseFileID) (*models.CaseFile, error) {
	return s.GetCaseFile(ctx, caseFileID)
}

func (s *Store) UpdateCaseFile(_ context.Context, cf *models.CaseFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caseFiles[cf.ID]; !ok {
		return notFound("case file")
	}
	s.caseFiles[cf.ID] = cloneCaseFile(cf)
	return nil
}

func (s *Store) SaveLifecycle(_ context.Context, cf *models.CaseFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.caseFiles[cf.ID]
	if !ok {
		return notFound("case file")
	}
	stored.FirstDocumentDate = copyTime(cf.FirstDocumentDate)
	stored.RetentionStartDate = copyTime(cf.RetentionStartDate)
	stored.ManagementEndDate = copyTime(cf.ManagementEndDate)
	stored.CentralEndDate = copyTime(cf.CentralEndDate)
	stored.Phase = cf.Phase
	stored.Status = cf.Status
	stored.UpdatedAt = cf.UpdatedAt
	return nil
}

func (s *Store) SetCaseFilePackage(_ context.Context, caseFileID id.CaseFileID, packageID id.PackageID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.caseFiles[caseFileID]
	if !ok {
		return notFound("case file")
	}
	if stored.PackageID != nil {
		return fmt.Errorf("set case file package: %w", sentinel.ErrAlreadyUsed)
	}
	stored.PackageID = &packageID
	stored.UpdatedAt = now
	return nil
}

func (s *Store) ListForRetention(_ context.Context, after id.CaseFileID, limit int) ([]*models.CaseFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CaseFile
	for _, cf := range s.caseFiles {
		if cf.Status.IsFinal() || bytes.Compare(cf.ID[:], after[:]) <= 0 {
			continue
		}
		out = append(out, cloneCaseFile(cf))
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindOpenWithCustomField(_ context.Context, office id.OfficeID, name, value string) ([]id.CaseFileID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*models.CaseFile
	for _, cf := range s.caseFiles {
		if cf.OfficeID != office || cf.Status != models.StatusActive {
			continue
		}
		for _, f := range cf.CustomFields {
			if f.Name == name && f.Value == value {
				matches = append(matches, cf)
				break
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	out := make([]id.CaseFileID, len(matches))
	for i, cf := range matches {
		out[i] = cf.ID
	}
	return out, nil
}

func (s *Store) EarliestDocumentDates(_ context.Context, ids []id.CaseFileID) (map[id.CaseFileID]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[id.CaseFileID]struct{}, len(ids))
	for _, v := range ids {
		wanted[v] = struct{}{}
	}
	out := make(map[id.CaseFileID]time.Time)
	for _, d := range s.documents {
		if _, ok := wanted[d.CaseFileID]; !ok {
			continue
		}
		if cur, ok := out[d.CaseFileID]; !ok || d.DocumentDate.Before(cur) {
			out[d.CaseFileID] = d.DocumentDate
		}
	}
	return out, nil
}

// Documents

func (s *Store) CreateDocument(_ context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caseFiles[d.CaseFileID]; !ok {
		return notFound("case file")
	}
	for _, existing := range s.documents {
		if existing.Number == d.Number {
			return conflict("document number")
		}
		if existing.CaseFileID == d.CaseFileID && existing.Folio == d.Folio {
			return conflict("document folio")
		}
	}
	cp := *d
	s.documents[d.ID] = &cp
	return nil
}

func (s *Store) ListDocuments(_ context.Context, caseFileID id.CaseFileID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, d := range s.documents {
		if d.CaseFileID == caseFileID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folio < out[j].Folio })
	return out, nil
}

func (s *Store) MaxFolio(_ context.Context, caseFileID id.CaseFileID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	folio := 0
	for _, d := range s.documents {
		if d.CaseFileID == caseFileID && d.Folio > folio {
			folio = d.Folio
		}
	}
	return folio, nil
}
