// Package httpapi assembles the HTTP surface: shared middleware, probes,
// metrics and the authenticated domain routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archivist/internal/platform/metrics"
	"archivist/pkg/platform/httputil"
	authmw "archivist/pkg/platform/middleware/auth"
	"archivist/pkg/platform/middleware/requestid"
	"archivist/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker is a dependency probed by /healthz.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator authmw.JWTValidator
	Checkers  []HealthChecker
	Handlers  []Registrar
	// MetricsHandler serves /metrics; nil uses the default registry.
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(deps.Metrics.Middleware)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Get("/healthz", healthHandler(deps.Checkers))
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireOperator(deps.Validator, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})
	return r
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

// healthHandler answers 503 when any checker fails.
func healthHandler(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]checkResult, len(checkers)),
		}
		for _, c := range checkers {
			if err := c.Check(r.Context()); err != nil {
				resp.Status = "fail"
				resp.Checks[c.Name()] = checkResult{Status: "fail", Error: err.Error()}
				continue
			}
			resp.Checks[c.Name()] = checkResult{Status: "ok"}
		}
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
