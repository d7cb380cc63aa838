package retention

import (
	"context"
	"errors"
	"time"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/sentinel"
	"archivist/pkg/requestcontext"
)

const (
	defaultAlertLimit = 100
	maxAlertLimit     = 1000
)

type AlertStore interface {
	ListAlerts(ctx context.Context, unreadOnly bool, limit int) ([]*models.Alert, error)
	MarkAlertRead(ctx context.Context, alertID id.AlertID, at time.Time) (*models.Alert, error)
}

// Alerts is the read side of the alerting subsystem.
type Alerts struct {
	store AlertStore
}

func NewAlerts(store AlertStore) *Alerts {
	return &Alerts{store: store}
}

// ListAlerts returns alerts newest first. A non-positive limit uses the
// default page size.
func (a *Alerts) ListAlerts(ctx context.Context, unreadOnly bool, limit int) ([]*models.Alert, error) {
	switch {
	case limit <= 0:
		limit = defaultAlertLimit
	case limit > maxAlertLimit:
		limit = maxAlertLimit
	}
	alerts, err := a.store.ListAlerts(ctx, unreadOnly, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

// MarkAlertRead flags an alert as read. Marking it again keeps the first
// read time.
func (a *Alerts) MarkAlertRead(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	alert, err := a.store.MarkAlertRead(ctx, alertID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark alert read")
	}
	return alert, nil
}
