package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "archivist/pkg/platform/middleware/auth"
	"archivist/pkg/platform/middleware/requestid"
	"archivist/pkg/requestcontext"
)

type checker struct {
	name string
	err  error
}

func (c checker) Name() string { return c.name }
func (c checker) Check(ctx context.Context) error { return c.err }

type validator struct{}

func (validator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &authmw.JWTClaims{Operator: "archivist-ana"}, nil
}

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.Actor(r.Context())+" "+requestcontext.RequestID(r.Context()))
	})
}

func newRouter(checkers ...HealthChecker) http.Handler {
	return NewRouter(Deps{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validator:      validator{},
		Checkers:       checkers,
		Handlers:       []Registrar{whoami{}},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }),
	})
}

func TestHealthz(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(checker{name: "postgres"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"].Status)
	})

	t.Run("a failing dependency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(checker{name: "postgres"}, checker{name: "kafka", err: errors.New("no brokers")}).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "fail", body.Status)
		assert.Equal(t, "no brokers", body.Checks["kafka"].Error)
	})
}

func TestProbesNeedNoToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestDomainRoutesRequireOperator(t *testing.T) {
	router := newRouter()

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(requestid.Header))
	})

	t.Run("operator becomes the actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		req.Header.Set(requestid.Header, "req-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "archivist-ana req-1", rec.Body.String())
	})
}
