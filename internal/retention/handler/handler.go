package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"archivist/internal/records/models"
	"archivist/internal/retention"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/httputil"
	"archivist/pkg/requestcontext"
)

// Runner triggers a retention run outside the schedule.
type Runner interface {
	RunNow(ctx context.Context, today time.Time) (*retention.RunReport, error)
}

type AlertService interface {
	ListAlerts(ctx context.Context, unreadOnly bool, limit int) ([]*models.Alert, error)
	MarkAlertRead(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
}

type Handler struct {
	runner Runner
	alerts AlertService
	logger *slog.Logger
}

func New(runner Runner, alerts AlertService, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, alerts: alerts, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/retention/recompute", h.HandleRecompute)
	r.Get("/retention/alerts", h.HandleListAlerts)
	r.Post("/retention/alerts/{id}/read", h.HandleMarkRead)
}

// RecomputeRequest is the optional body of POST /retention/recompute. Date
// defaults to today (UTC) and may not lie in the future.
type RecomputeRequest struct {
	Date string `json:"date,omitempty"`

	today time.Time
}

func (r *RecomputeRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(r.Date))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	r.today = d
	return nil
}

func (h *Handler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[RecomputeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	today := req.today
	if today.IsZero() {
		today = requestcontext.Today(ctx)
	}
	// A run saves what it computes, so a future day would persist terminal
	// statuses that no later run undoes.
	if today.After(requestcontext.Today(ctx)) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "date must not be after today"))
		return
	}
	report, err := h.runner.RunNow(ctx, today)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.InfoContext(ctx, "recompute rejected, run in progress", "request_id", requestID)
		} else {
			h.logger.ErrorContext(ctx, "recompute failed", "request_id", requestID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	unread := false
	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unread must be a boolean"))
			return
		}
		unread = b
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	alerts, err := h.alerts.ListAlerts(ctx, unread, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list alerts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alertID, err := id.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	alert, err := h.alerts.MarkAlertRead(ctx, alertID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to mark alert read",
			"request_id", requestcontext.RequestID(ctx),
			"alert_id", alertID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alert)
}
