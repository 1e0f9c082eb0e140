package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/routesim/pkg/observability"
)

// RequestIDHeader carries the request id. A client-supplied value is kept.
const RequestIDHeader = "X-Request-Id"

// observe tags every request with an id, fires the HTTP hooks and logs the
// outcome at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := r.Context()
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		dur := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("http",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}
