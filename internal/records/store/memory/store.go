// Package memory is an in-process records store for tests and local runs.
// It enforces the same uniqueness rules as the Postgres schema and returns
// copies, so callers never alias stored state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/sentinel"
)

type Store struct {
	mu sync.RWMutex

	counters    map[string]int64
	series      map[id.SeriesID]*models.Series
	subseries   map[id.SubseriesID]*models.Subseries
	caseFiles   map[id.CaseFileID]*models.CaseFile
	documents   map[id.DocumentID]*models.Document
	boxes       map[id.BoxID]*models.Box
	folders     map[id.FolderID]*models.Folder
	packages    map[id.PackageID]*models.Package
	alerts      map[id.AlertID]*models.Alert
	disposition []*models.DispositionRecord
	snapshots   []*models.CaseFileSnapshot
}

func New() *Store {
	return &Store{
		counters:  make(map[string]int64),
		series:    make(map[id.SeriesID]*models.Series),
		subseries: make(map[id.SubseriesID]*models.Subseries),
		caseFiles: make(map[id.CaseFileID]*models.CaseFile),
		documents: make(map[id.DocumentID]*models.Document),
		boxes:     make(map[id.BoxID]*models.Box),
		folders:   make(map[id.FolderID]*models.Folder),
		packages:  make(map[id.PackageID]*models.Package),
		alerts:    make(map[id.AlertID]*models.Alert),
	}
}

func notFound(kind string) error {
	return fmt.Errorf("%s: %w", kind, sentinel.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%s: %w", what, sentinel.ErrConflict)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyID[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneCaseFile(c *models.CaseFile) *models.CaseFile {
	out := *c
	out.SubseriesID = copyID(c.SubseriesID)
	out.FolderID = copyID(c.FolderID)
	out.PackageID = copyID(c.PackageID)
	out.ClosingDate = copyTime(c.ClosingDate)
	out.FirstDocumentDate = copyTime(c.FirstDocumentDate)
	out.RetentionStartDate = copyTime(c.RetentionStartDate)
	out.ManagementEndDate = copyTime(c.ManagementEndDate)
	out.CentralEndDate = copyTime(c.CentralEndDate)
	if c.CustomFields != nil {
		out.CustomFields = append([]models.CustomField(nil), c.CustomFields...)
	}
	return &out
}

func cloneCapacity(c models.Capacity) models.Capacity {
	c.ClosedAt = copyTime(c.ClosedAt)
	return c
}

func cloneBox(b *models.Box) *models.Box {
	out := *b
	out.Capacity = cloneCapacity(b.Capacity)
	return &out
}

func cloneFolder(f *models.Folder) *models.Folder {
	out := *f
	out.BoxID = copyID(f.BoxID)
	out.CaseFileID = copyID(f.CaseFileID)
	out.Capacity = cloneCapacity(f.Capacity)
	return &out
}

func clonePackage(p *models.Package) *models.Package {
	out := *p
	out.Capacity = cloneCapacity(p.Capacity)
	return &out
}

func cloneSubseries(s *models.Subseries) *models.Subseries {
	out := *s
	out.ManagementRetentionYears = copyID(s.ManagementRetentionYears)
	out.CentralRetentionYears = copyID(s.CentralRetentionYears)
	out.FinalDisposition = copyID(s.FinalDisposition)
	return &out
}

func cloneAlert(a *models.Alert) *models.Alert {
	out := *a
	out.ReadAt = copyTime(a.ReadAt)
	return &out
}

// Sequences

func (s *Store) Increment(_ context.Context, c models.Counter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := c.Name()
	if _, ok := s.counters[name]; !ok {
		seed, err := s.seedLocked(c)
		if err != nil {
			return 0, err
		}
		s.counters[name] = seed
	}
	s.counters[name]++
	return s.counters[name], nil
}

func (s *Store) seedLocked(c models.Counter) (int64, error) {
	var seed int64
	switch c.Kind {
	case models.CounterDocument:
		for _, d := range s.documents {
			if strings.HasPrefix(d.Number, c.DayPrefix+"-") {
				seed++
			}
		}
	case models.CounterCaseFile:
		for _, cf := range s.caseFiles {
			if n, err := strconv.ParseInt(cf.Code, 10, 64); err == nil && n > seed {
				seed = n
			}
		}
	case models.CounterFolder:
		for _, f := range s.folders {
			seed = max(seed, f.Number)
		}
	case models.CounterPackage:
		for _, p := range s.packages {
			if n, err := strconv.ParseInt(p.Number, 10, 64); err == nil && n > seed {
				seed = n
			}
		}
	case models.CounterBox:
		for _, b := range s.boxes {
			if b.OfficeID == c.Office {
				seed = max(seed, b.Number)
			}
		}
	default:
		return 0, fmt.Errorf("unknown counter kind %q", c.Kind)
	}
	return seed, nil
}

// Schedule

func (s *Store) CreateSeries(_ context.Context, series *models.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.series {
		if existing.Code == series.Code {
			return conflict("series code")
		}
	}
	cp := *series
	s.series[series.ID] = &cp
	return nil
}

func (s *Store) GetSeries(_ context.Context, seriesID id.SeriesID) (*models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[seriesID]
	if !ok {
		return nil, notFound("series")
	}
	cp := *series
	return &cp, nil
}

func (s *Store) GetSeriesByCode(_ context.Context, code string) (*models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, series := range s.series {
		if series.Code == code {
			cp := *series
			return &cp, nil
		}
	}
	return nil, notFound("series")
}

func (s *Store) ListSeries(_ context.Context) ([]*models.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Series, 0, len(s.series))
	for _, series := range s.series {
		cp := *series
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) CreateSubseries(_ context.Context, sub *models.Subseries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[sub.SeriesID]; !ok {
		return notFound("series")
	}
	for _, existing := range s.subseries {
		if existing.SeriesID == sub.SeriesID && existing.Code == sub.Code {
			return conflict("subseries code")
		}
	}
	s.subseries[sub.ID] = cloneSubseries(sub)
	return nil
}

func (s *Store) GetSubseries(_ context.Context, subseriesID id.SubseriesID) (*models.Subseries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subseries[subseriesID]
	if !ok {
		return nil, notFound("subseries")
	}
	return cloneSubseries(sub), nil
}

func (s *Store) ListSubseries(_ context.Context, seriesID id.SeriesID) ([]*models.Subseries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Subseries
	for _, sub := range s.subseries {
		if sub.SeriesID == seriesID {
			out = append(out, cloneSubseries(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
