package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

// Alerts

func (s *Store) InsertAlertIfAbsent(_ context.Context, a *models.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.alerts {
		if existing.CaseFileID == a.CaseFileID && existing.Kind == a.Kind && existing.Deadline.Equal(a.Deadline) {
			return false, nil
		}
	}
	s.alerts[a.ID] = cloneAlert(a)
	return true, nil
}

func (s *Store) ListAlerts(_ context.Context, unreadOnly bool, limit int) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Alert
	for _, a := range s.alerts {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, cloneAlert(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RaisedOn.Equal(out[j].RaisedOn) {
			return out[i].RaisedOn.After(out[j].RaisedOn)
		}
		return out[i].Deadline.Before(out[j].Deadline)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkAlertRead(_ context.Context, alertID id.AlertID, at time.Time) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return nil, notFound("alert")
	}
	a.Read = true
	if a.ReadAt == nil {
		readAt := at
		a.ReadAt = &readAt
	}
	return cloneAlert(a), nil
}

// Disposition ledger

func (s *Store) CreateDispositionRecord(_ context.Context, r *models.DispositionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caseFiles[r.CaseFileID]; !ok {
		return notFound("case file")
	}
	cp := *r
	s.disposition = append(s.disposition, &cp)
	return nil
}

func (s *Store) ListDispositionRecords(_ context.Context, caseFileID id.CaseFileID) ([]*models.DispositionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DispositionRecord
	for _, r := range s.disposition {
		if r.CaseFileID == caseFileID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SaveSnapshot round-trips through JSON so the stored copy matches what the
// Postgres store would archive.
func (s *Store) SaveSnapshot(_ context.Context, snap *models.CaseFileSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	var cp models.CaseFileSnapshot
	if err := json.Unmarshal(payload, &cp); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, &cp)
	return nil
}

func (s *Store) GetSnapshot(_ context.Context, caseFileID id.CaseFileID) (*models.CaseFileSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].CaseFileID == caseFileID {
			cp := *s.snapshots[i]
			return &cp, nil
		}
	}
	return nil, notFound("snapshot")
}
