// Package requestid tags every request with an identifier that handlers log
// and the audit trail records.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"archivist/pkg/requestcontext"
)

const Header = "X-Request-ID"

const maxLength = 128

// Middleware keeps a well-formed inbound X-Request-ID and mints one
// otherwise. The id is echoed on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if !valid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}

func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
