// Package schedule maintains the records-retention schedule: the series and
// subseries every case file is filed under.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/audit"
	"archivist/pkg/platform/sentinel"
	txcontext "archivist/pkg/platform/tx"
	"archivist/pkg/requestcontext"
)

type Store interface {
	CreateSeries(ctx context.Context, series *models.Series) error
	GetSeries(ctx context.Context, seriesID id.SeriesID) (*models.Series, error)
	GetSeriesByCode(ctx context.Context, code string) (*models.Series, error)
	ListSeries(ctx context.Context) ([]*models.Series, error)
	CreateSubseries(ctx context.Context, sub *models.Subseries) error
	ListSubseries(ctx context.Context, seriesID id.SeriesID) ([]*models.Subseries, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store   Store
	tx      txcontext.Runner
	auditor AuditPublisher
	logger  *slog.Logger
}

func New(store Store, tx txcontext.Runner, auditor AuditPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, tx: tx, auditor: auditor, logger: logger}
}

type SeriesInput struct {
	Code                     string
	Name                     string
	ManagementRetentionYears int
	CentralRetentionYears    int
	FinalDisposition         models.FinalDisposition
	RequiresSubseries        bool
}

// SubseriesInput leaves a retention field nil to inherit it from the series.
type SubseriesInput struct {
	Code                     string
	Name                     string
	ManagementRetentionYears *int
	CentralRetentionYears    *int
	FinalDisposition         *models.FinalDisposition
}

func (in SubseriesInput) validate() error {
	switch {
	case strings.TrimSpace(in.Code) == "":
		return dErrors.New(dErrors.CodeValidation, "subseries code is required")
	case strings.TrimSpace(in.Name) == "":
		return dErrors.New(dErrors.CodeValidation, "subseries name is required")
	case in.ManagementRetentionYears != nil && *in.ManagementRetentionYears < 0,
		in.CentralRetentionYears != nil && *in.CentralRetentionYears < 0:
		return dErrors.New(dErrors.CodeValidation, "retention years cannot be negative")
	case in.FinalDisposition != nil && !in.FinalDisposition.IsValid():
		return dErrors.Newf(dErrors.CodeValidation, "unknown final disposition %q", *in.FinalDisposition)
	}
	return nil
}

// SeriesDetail is a series with its subseries in code order.
type SeriesDetail struct {
	*models.Series
	Subseries []*models.Subseries `json:"subseries"`
}

func (s *Service) CreateSeries(ctx context.Context, in SeriesInput) (*models.Series, error) {
	var series *models.Series
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		series, err = s.createSeries(txCtx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *Service) createSeries(ctx context.Context, in SeriesInput) (*models.Series, error) {
	series := &models.Series{
		ID:                       id.SeriesID(uuid.New()),
		Code:                     strings.TrimSpace(in.Code),
		Name:                     strings.TrimSpace(in.Name),
		ManagementRetentionYears: in.ManagementRetentionYears,
		CentralRetentionYears:    in.CentralRetentionYears,
		FinalDisposition:         in.FinalDisposition,
		RequiresSubseries:        in.RequiresSubseries,
		CreatedAt:                requestcontext.Now(ctx),
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateSeries(ctx, series); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "series %s already exists", series.Code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create series")
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     string(audit.EventSeriesCreated),
		EntityType: audit.EntitySeries,
		EntityID:   series.ID.String(),
		Details: fmt.Sprintf("series %s %q: %d+%d years, %s", series.Code, series.Name,
			series.ManagementRetentionYears, series.CentralRetentionYears, series.FinalDisposition),
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit series")
	}
	return series, nil
}

func (s *Service) CreateSubseries(ctx context.Context, seriesID id.SeriesID, in SubseriesInput) (*models.Subseries, error) {
	var sub *models.Subseries
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		series, err := s.store.GetSeries(txCtx, seriesID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "series not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load series")
		}
		sub, err = s.createSubseries(txCtx, series, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) createSubseries(ctx context.Context, series *models.Series, in SubseriesInput) (*models.Subseries, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sub := &models.Subseries{
		ID:                       id.SubseriesID(uuid.New()),
		SeriesID:                 series.ID,
		Code:                     strings.TrimSpace(in.Code),
		Name:                     strings.TrimSpace(in.Name),
		ManagementRetentionYears: in.ManagementRetentionYears,
		CentralRetentionYears:    in.CentralRetentionYears,
		FinalDisposition:         in.FinalDisposition,
		CreatedAt:                requestcontext.Now(ctx),
	}
	if err := s.store.CreateSubseries(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "subseries %s already exists in series %s", sub.Code, series.Code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create subseries")
	}
	r := models.EffectiveRetention(*series, sub)
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     string(audit.EventSubseriesCreated),
		EntityType: audit.EntitySubseries,
		EntityID:   sub.ID.String(),
		Details: fmt.Sprintf("subseries %s %q of series %s: %d+%d years, %s", sub.Code, sub.Name, series.Code,
			r.ManagementYears, r.CentralYears, r.Disposition),
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit subseries")
	}
	return sub, nil
}

func (s *Service) ListSchedule(ctx context.Context) ([]*SeriesDetail, error) {
	series, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list series")
	}
	out := make([]*SeriesDetail, 0, len(series))
	for _, entry := range series {
		subs, err := s.store.ListSubseries(ctx, entry.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subseries")
		}
		if subs == nil {
			subs = []*models.Subseries{}
		}
		out = append(out, &SeriesDetail{Series: entry, Subseries: subs})
	}
	return out, nil
}
