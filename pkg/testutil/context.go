package testutil

import (
	"net/http"
	"time"

	"archivist/pkg/requestcontext"
)

// WithActor sets the acting operator the way the auth middleware does.
func WithActor(req *http.Request, operator string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), operator))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
