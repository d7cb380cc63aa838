package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
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

	"archivist/internal/records/models"
	"archivist/internal/schedule"
	"archivist/internal/schedule/handler/mocks"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

func setup(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rec
}

func TestCreateSeries(t *testing.T) {
	svc, router := setup(t)

	t.Run("created", func(t *testing.T) {
		svc.EXPECT().CreateSeries(gomock.Any(), schedule.SeriesInput{
			Code: "100", Name: "Contracts", ManagementRetentionYears: 2, CentralRetentionYears: 8,
			FinalDisposition: models.DispositionSelection,
		}).Return(&models.Series{Code: "100"}, nil)
		rec := do(router, http.MethodPost, "/series",
			`{"code":" 100","name":"Contracts","management_retention_years":2,"central_retention_years":8,"final_disposition":"Selection"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown disposition", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/series", `{"code":"1","name":"x","final_disposition":"shred"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc.EXPECT().CreateSeries(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeConflict, "series 100 already exists"))
		rec := do(router, http.MethodPost, "/series", `{"code":"100","name":"x","final_disposition":"conservation"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCreateSubseries(t *testing.T) {
	svc, router := setup(t)
	seriesID := id.SeriesID(uuid.New())
	central := 18
	destruction := models.DispositionDestruction

	svc.EXPECT().CreateSubseries(gomock.Any(), seriesID, schedule.SubseriesInput{
		Code: "100.1", Name: "Public works", CentralRetentionYears: &central, FinalDisposition: &destruction,
	}).Return(&models.Subseries{Code: "100.1"}, nil)
	rec := do(router, http.MethodPost, "/series/"+seriesID.String()+"/subseries",
		`{"code":"100.1","name":"Public works","central_retention_years":18,"final_disposition":"destruction"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	t.Run("invalid series id", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/series/nope/subseries", `{"code":"1","name":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown series", func(t *testing.T) {
		svc.EXPECT().CreateSubseries(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeNotFound, "series not found"))
		rec := do(router, http.MethodPost, "/series/"+uuid.NewString()+"/subseries", `{"code":"1","name":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListSchedule(t *testing.T) {
	svc, router := setup(t)

	t.Run("empty", func(t *testing.T) {
		svc.EXPECT().ListSchedule(gomock.Any()).Return(nil, nil)
		rec := do(router, http.MethodGet, "/series", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"series":[]}`, rec.Body.String())
	})

	t.Run("nested subseries", func(t *testing.T) {
		svc.EXPECT().ListSchedule(gomock.Any()).Return([]*schedule.SeriesDetail{{
			Series:    &models.Series{Code: "100", Name: "Contracts"},
			Subseries: []*models.Subseries{{Code: "100.1"}},
		}}, nil)
		rec := do(router, http.MethodGet, "/series", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"100"`)
		assert.Contains(t, rec.Body.String(), `"subseries":[{`)
	})
}
