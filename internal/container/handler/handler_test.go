package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"archivist/internal/container"
	"archivist/internal/container/handler/mocks"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(h, testutil.NewJSONRequest(t, method, path, body))
}

func TestCreateBox(t *testing.T) {
	svc, router := newRouter(t)
	office := id.OfficeID(uuid.New())

	svc.EXPECT().
		CreateBox(gomock.Any(), container.BoxRequest{OfficeID: office, Capacity: 5, Location: models.Location{Shelf: "A1"}}).
		Return(&models.Box{ID: id.BoxID(uuid.New()), OfficeID: office, Number: 1}, nil)

	rec := do(t, router, http.MethodPost, "/boxes", map[string]any{
		"office_id": office.String(),
		"capacity":  5,
		"location":  map[string]string{"shelf": " A1 "},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var box models.Box
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&box))
	assert.EqualValues(t, 1, box.Number)
}

func TestCreateBoxValidation(t *testing.T) {
	_, router := newRouter(t)

	t.Run("missing office", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/boxes", map[string]any{"capacity": 5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/boxes", map[string]any{"office_id": uuid.NewString(), "colour": "red"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateFolderCapacityExceeded(t *testing.T) {
	svc, router := newRouter(t)
	boxID := id.BoxID(uuid.New())

	svc.EXPECT().
		CreateFolder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req container.FolderRequest) (*models.Folder, error) {
			require.NotNil(t, req.BoxID)
			assert.Equal(t, boxID, *req.BoxID)
			return nil, dErrors.New(dErrors.CodeCapacityExceeded, "box is full (10/10)")
		})

	rec := do(t, router, http.MethodPost, "/folders", map[string]any{
		"office_id": uuid.NewString(),
		"box_id":    boxID.String(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(dErrors.CodeCapacityExceeded), testutil.ErrorCode(t, rec))
}

func TestAssign(t *testing.T) {
	svc, router := newRouter(t)
	pkgID := id.PackageID(uuid.New())
	caseFileID := id.CaseFileID(uuid.New())

	svc.EXPECT().
		AssignCaseFileToPackage(gomock.Any(), container.AssignRequest{
			CaseFileID: caseFileID, PackageID: pkgID, MarkFull: true, Notes: "year end",
		}).
		Return(&container.AssignResult{
			Package: &models.Package{ID: pkgID, Number: "7", Capacity: models.Capacity{State: models.ContainerFull}},
			Next:    &models.Package{ID: id.PackageID(uuid.New()), Number: "8", Capacity: models.Capacity{State: models.ContainerOpen}},
		}, nil)

	rec := do(t, router, http.MethodPost, "/packages/"+pkgID.String()+"/assignments", map[string]any{
		"case_file_id": caseFileID.String(),
		"mark_full":    true,
		"notes":        "year end",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Package struct {
			Number string `json:"number"`
		} `json:"package"`
		Next struct {
			Number string `json:"number"`
		} `json:"next_package"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "7", body.Package.Number)
	assert.Equal(t, "8", body.Next.Number)
}

func TestPackageErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "package not found"), http.StatusNotFound},
		{"already assigned", dErrors.New(dErrors.CodeAlreadyAssigned, "case file is already in a package"), http.StatusConflict},
		{"internal", dErrors.Wrap(io.ErrUnexpectedEOF, dErrors.CodeInternal, "failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().ReopenPackage(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			rec := do(t, router, http.MethodPost, "/packages/"+uuid.NewString()+"/reopen", nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPackagePathValidation(t *testing.T) {
	_, router := newRouter(t)
	rec := do(t, router, http.MethodPost, "/packages/not-a-uuid/close", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPackagesEmpty(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().ListPackages(gomock.Any(), models.ContainerOpen).Return(nil, nil)

	rec := do(t, router, http.MethodGet, "/packages?state=open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"packages":[]}`, rec.Body.String())
}

func TestActivePackage(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().GetOrCreateActivePackage(gomock.Any()).
		Return(&models.Package{ID: id.PackageID(uuid.New()), Number: "3"}, nil)

	rec := do(t, router, http.MethodGet, "/packages/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"number":"3"`)
}
