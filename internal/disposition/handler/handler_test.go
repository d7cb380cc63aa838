package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"archivist/internal/disposition"
	"archivist/internal/disposition/handler/mocks"
	"archivist/internal/records/models"
	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
	"archivist/pkg/testutil"
)

func setup(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithActor(testutil.NewRequestWithBody(http.MethodPost, "/dispositions", body), "records.officer")
	return testutil.DoRequest(h, req)
}

func TestProcessBatch(t *testing.T) {
	svc, router := setup(t)
	ok, bad := id.CaseFileID(uuid.New()), id.CaseFileID(uuid.New())

	svc.EXPECT().Process(gomock.Any(), disposition.BatchRequest{
		CaseFileIDs: []id.CaseFileID{ok, bad},
		Action:      models.ActionDestroy,
		Notes:       "resolution 4",
	}).Return(&disposition.BatchResult{
		Processed: 1,
		Failed:    1,
		Errors:    []disposition.ItemError{{CaseFileID: bad, Code: dErrors.CodeInvalidState, Message: "case file 7 is still active"}},
		Records:   []*models.DispositionRecord{{CaseFileID: ok, Outcome: models.OutcomeDestroyed}},
	}, nil)

	rec := post(t, router, `{"case_file_ids":["`+ok.String()+`","`+bad.String()+`"],"action":"DESTROY","notes":" resolution 4 "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Processed int `json:"processed"`
		Failed    int `json:"failed"`
		Errors    []struct {
			CaseFileID string `json:"case_file_id"`
			Code       string `json:"code"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Processed)
	assert.Equal(t, 1, body.Failed)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, bad.String(), body.Errors[0].CaseFileID)
	assert.Equal(t, "invalid_state", body.Errors[0].Code)
}

func TestProcessBatchValidation(t *testing.T) {
	_, router := setup(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown action", `{"case_file_ids":["` + uuid.NewString() + `"],"action":"shred"}`},
		{"malformed id", `{"case_file_ids":["nope"],"action":"retain"}`},
		{"empty batch", `{"case_file_ids":[],"action":"retain"}`},
		{"not json", `case_file_ids=1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(t, router, tt.body).Code)
		})
	}
}

func TestProcessBatchInternalError(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Process(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(io.ErrClosedPipe, dErrors.CodeInternal, "disposition batch failed"))

	rec := post(t, router, `{"case_file_ids":["`+uuid.NewString()+`"],"action":"retain"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "closed pipe")
}

func TestListDispositions(t *testing.T) {
	svc, router := setup(t)
	caseFileID := id.CaseFileID(uuid.New())
	svc.EXPECT().ListByCaseFile(gomock.Any(), caseFileID).Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/case-files/"+caseFileID.String()+"/dispositions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dispositions":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/case-files/bogus/dispositions", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBatchDeduplicatesIDs(t *testing.T) {
	svc, router := setup(t)
	caseFileID := id.CaseFileID(uuid.New())

	svc.EXPECT().Process(gomock.Any(), disposition.BatchRequest{
		CaseFileIDs: []id.CaseFileID{caseFileID},
		Action:      models.ActionRetain,
	}).Return(&disposition.BatchResult{Processed: 1}, nil)

	upper := strings.ToUpper(caseFileID.String())
	rec := post(t, router, `{"case_file_ids":["`+caseFileID.String()+`"," `+upper+`"],"action":"retain"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, testutil.UnmarshalResponse[disposition.BatchResult](t, rec).Processed)
}
