package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"archivist/internal/disposition"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/httputil"
	strs "archivist/pkg/platform/strings"
	"archivist/pkg/requestcontext"
)

type Service interface {
	Process(ctx context.Context, req disposition.BatchRequest) (*disposition.BatchResult, error)
	ListByCaseFile(ctx context.Context, caseFileID id.CaseFileID) ([]*models.DispositionRecord, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/dispositions", h.HandleProcess)
	r.Get("/case-files/{id}/dispositions", h.HandleList)
}

// BatchRequest is the body of POST /dispositions.
type BatchRequest struct {
	CaseFileIDs []string `json:"case_file_ids"`
	Action      string   `json:"action"`
	Notes       string   `json:"notes"`

	parsed disposition.BatchRequest
}

func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	action, err := models.ParseDispositionAction(r.Action)
	if err != nil {
		return err
	}
	// Each case file is processed at most once per batch.
	cleaned := strs.DedupeAndTrimLower(r.CaseFileIDs)
	ids := make([]id.CaseFileID, 0, len(cleaned))
	for _, raw := range cleaned {
		caseFileID, err := id.ParseCaseFileID(raw)
		if err != nil {
			return err
		}
		ids = append(ids, caseFileID)
	}
	r.parsed = disposition.BatchRequest{
		CaseFileIDs: ids,
		Action:      action,
		Notes:       strings.TrimSpace(r.Notes),
	}
	return r.parsed.Validate()
}

// HandleProcess answers 200 even when items failed; the body lists them.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Process(ctx, req.parsed)
	if err != nil {
		h.logger.ErrorContext(ctx, "disposition batch failed",
			"request_id", requestID,
			"action", req.Action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseFileID, err := id.ParseCaseFileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.ListByCaseFile(ctx, caseFileID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list dispositions",
			"request_id", requestcontext.RequestID(ctx),
			"case_file_id", caseFileID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*models.DispositionRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"dispositions": records})
}
