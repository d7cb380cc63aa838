package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"archivist/internal/records/models"
	"archivist/internal/schedule"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/httputil"
	"archivist/pkg/requestcontext"
)

type Service interface {
	CreateSeries(ctx context.Context, in schedule.SeriesInput) (*models.Series, error)
	CreateSubseries(ctx context.Context, seriesID id.SeriesID, in schedule.SubseriesInput) (*models.Subseries, error)
	ListSchedule(ctx context.Context) ([]*schedule.SeriesDetail, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/series", h.HandleList)
	r.Post("/series", h.HandleCreateSeries)
	r.Post("/series/{id}/subseries", h.HandleCreateSubseries)
}

type SeriesRequest struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	ManagementYears   int    `json:"management_retention_years"`
	CentralYears      int    `json:"central_retention_years"`
	FinalDisposition  string `json:"final_disposition"`
	RequiresSubseries bool   `json:"requires_subseries"`

	parsed schedule.SeriesInput
}

func (r *SeriesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	disposition, err := models.ParseFinalDisposition(r.FinalDisposition)
	if err != nil {
		return err
	}
	r.parsed = schedule.SeriesInput{
		Code:                     strings.TrimSpace(r.Code),
		Name:                     strings.TrimSpace(r.Name),
		ManagementRetentionYears: r.ManagementYears,
		CentralRetentionYears:    r.CentralYears,
		FinalDisposition:         disposition,
		RequiresSubseries:        r.RequiresSubseries,
	}
	return nil
}

// SubseriesRequest leaves a field out to inherit it from the series.
type SubseriesRequest struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	ManagementYears  *int    `json:"management_retention_years,omitempty"`
	CentralYears     *int    `json:"central_retention_years,omitempty"`
	FinalDisposition *string `json:"final_disposition,omitempty"`

	parsed schedule.SubseriesInput
}

func (r *SubseriesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.parsed = schedule.SubseriesInput{
		Code:                     strings.TrimSpace(r.Code),
		Name:                     strings.TrimSpace(r.Name),
		ManagementRetentionYears: r.ManagementYears,
		CentralRetentionYears:    r.CentralYears,
	}
	if r.FinalDisposition != nil {
		d, err := models.ParseFinalDisposition(*r.FinalDisposition)
		if err != nil {
			return err
		}
		r.parsed.FinalDisposition = &d
	}
	return nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListSchedule(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list schedule",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if list == nil {
		list = []*schedule.SeriesDetail{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"series": list})
}

func (h *Handler) HandleCreateSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[SeriesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	series, err := h.service.CreateSeries(ctx, req.parsed)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create series",
			"request_id", requestID,
			"code", req.parsed.Code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, series)
}

func (h *Handler) HandleCreateSubseries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	seriesID, err := id.ParseSeriesID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubseriesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sub, err := h.service.CreateSubseries(ctx, seriesID, req.parsed)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create subseries",
			"request_id", requestID,
			"series_id", seriesID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sub)
}
