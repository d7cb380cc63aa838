// Package requesttime fixes one "now" per request, so every timestamp a
// request writes (audit events, container closures, case-file updates)
// agrees.
package requesttime

import (
	"net/http"
	"time"

	"archivist/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
