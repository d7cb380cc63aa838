package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"archivist/internal/container"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/platform/httputil"
	"archivist/pkg/requestcontext"
)

type Service interface {
	CreateBox(ctx context.Context, req container.BoxRequest) (*models.Box, error)
	CreateFolder(ctx context.Context, req container.FolderRequest) (*models.Folder, error)
	GetOrCreateActivePackage(ctx context.Context) (*models.Package, error)
	AssignCaseFileToPackage(ctx context.Context, req container.AssignRequest) (*container.AssignResult, error)
	ClosePackage(ctx context.Context, packageID id.PackageID, notes string) (*container.AssignResult, error)
	ReopenPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	GetPackage(ctx context.Context, packageID id.PackageID) (*models.Package, error)
	ListPackages(ctx context.Context, state models.ContainerState) ([]*models.Package, error)
}

// Handler exposes box, folder and package operations.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/boxes", h.HandleCreateBox)
	r.Post("/folders", h.HandleCreateFolder)
	r.Get("/packages", h.HandleListPackages)
	r.Get("/packages/active", h.HandleActivePackage)
	r.Get("/packages/{id}", h.HandleGetPackage)
	r.Post("/packages/{id}/assignments", h.HandleAssign)
	r.Post("/packages/{id}/close", h.HandleClose)
	r.Post("/packages/{id}/reopen", h.HandleReopen)
}

// fail logs err at a level matching its status and writes the response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append([]any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}, attrs...)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) HandleCreateBox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateBoxRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	box, err := h.service.CreateBox(ctx, req.parsed)
	if err != nil {
		h.fail(ctx, w, "failed to create box", err, "office_id", req.OfficeID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, box)
}

func (h *Handler) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateFolderRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	folder, err := h.service.CreateFolder(ctx, req.parsed)
	if err != nil {
		h.fail(ctx, w, "failed to create folder", err, "box_id", req.BoxID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, folder)
}

func (h *Handler) HandleListPackages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := models.ContainerState(r.URL.Query().Get("state"))
	pkgs, err := h.service.ListPackages(ctx, state)
	if err != nil {
		h.fail(ctx, w, "failed to list packages", err)
		return
	}
	if pkgs == nil {
		pkgs = []*models.Package{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"packages": pkgs})
}

func (h *Handler) HandleActivePackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pkg, err := h.service.GetOrCreateActivePackage(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to resolve active package", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pkg)
}

func (h *Handler) HandleGetPackage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pkg, err := h.service.GetPackage(ctx, packageID)
	if err != nil {
		h.fail(ctx, w, "failed to load package", err, "package_id", packageID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pkg)
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.AssignCaseFileToPackage(ctx, container.AssignRequest{
		CaseFileID: req.caseFileID,
		PackageID:  packageID,
		MarkFull:   req.MarkFull,
		Notes:      req.Notes,
	})
	if err != nil {
		h.fail(ctx, w, "failed to assign case file", err,
			"package_id", packageID,
			"case_file_id", req.CaseFileID,
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ClosePackageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.ClosePackage(ctx, packageID, req.Notes)
	if err != nil {
		h.fail(ctx, w, "failed to close package", err, "package_id", packageID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	packageID, err := id.ParsePackageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pkg, err := h.service.ReopenPackage(ctx, packageID)
	if err != nil {
		h.fail(ctx, w, "failed to reopen package", err, "package_id", packageID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pkg)
}
