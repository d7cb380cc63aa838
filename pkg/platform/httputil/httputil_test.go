package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "archivist/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

type closeRequest struct {
	ClosingDate string `json:"closing_date"`
}

func (r *closeRequest) Validate() error {
	if r.ClosingDate == "" {
		return dErrors.New(dErrors.CodeValidation, "closing_date is required")
	}
	return nil
}

func TestWriteError_DomainMapping(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:         http.StatusNotFound,
		dErrors.CodeCapacityExceeded: http.StatusConflict,
		dErrors.CodeInvalidState:     http.StatusConflict,
		dErrors.CodeAlreadyAssigned:  http.StatusConflict,
		dErrors.CodeValidation:       http.StatusBadRequest,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(code, "nope"))
		if w.Code != status {
			t.Fatalf("%s: expected status %d, got %d", code, status, w.Code)
		}
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"closing_date":"2024-01-15"}`))

		req, ok := DecodeAndPrepare[closeRequest](w, r, nil, r.Context(), "req-1")
		if !ok {
			t.Fatalf("expected decode to succeed, got status %d", w.Code)
		}
		if req.ClosingDate != "2024-01-15" {
			t.Fatalf("unexpected closing date %q", req.ClosingDate)
		}
	})

	t.Run("validation failure writes 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))

		if _, ok := DecodeAndPrepare[closeRequest](w, r, nil, r.Context(), "req-2"); ok {
			t.Fatalf("expected validation failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"closing_date":"2024-01-15","extra":1}`))

		if _, ok := DecodeAndPrepare[closeRequest](w, r, nil, r.Context(), "req-3"); ok {
			t.Fatalf("expected decode failure")
		}
	})
}
