package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"archivist/internal/casefile"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	"archivist/pkg/platform/httputil"
	"archivist/pkg/requestcontext"
)

type Creator interface {
	Create(ctx context.Context, req casefile.CreateRequest) (*casefile.CreateResult, error)
}

type Service interface {
	Get(ctx context.Context, caseFileID id.CaseFileID) (*casefile.Detail, error)
	Close(ctx context.Context, caseFileID id.CaseFileID, closingDate time.Time) (*models.CaseFile, error)
	AddDocument(ctx context.Context, caseFileID id.CaseFileID, in casefile.DocumentInput) (*models.Document, error)
}

type Handler struct {
	creator Creator
	service Service
	logger  *slog.Logger
}

func New(creator Creator, service Service, logger *slog.Logger) *Handler {
	return &Handler{creator: creator, service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/case-files", h.HandleCreate)
	r.Get("/case-files/{id}", h.HandleGet)
	r.Post("/case-files/{id}/close", h.HandleClose)
	r.Post("/case-files/{id}/documents", h.HandleAddDocument)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.creator.Create(ctx, req.parsed)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create case file",
			"request_id", requestID,
			"series_id", req.SeriesID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseFileID, err := id.ParseCaseFileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.service.Get(ctx, caseFileID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get case file",
			"request_id", requestcontext.RequestID(ctx),
			"case_file_id", caseFileID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caseFileID, err := id.ParseCaseFileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CloseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	closingDate := requestcontext.Today(ctx)
	if req.parsed != nil {
		closingDate = *req.parsed
	}
	cf, err := h.service.Close(ctx, caseFileID, closingDate)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to close case file",
			"request_id", requestID,
			"case_file_id", caseFileID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cf)
}

func (h *Handler) HandleAddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caseFileID, err := id.ParseCaseFileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, err := h.service.AddDocument(ctx, caseFileID, req.parsed)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add document",
			"request_id", requestID,
			"case_file_id", caseFileID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}
