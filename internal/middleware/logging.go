package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging returns a middleware that logs every request: method, path,
// user ID (empty pre-auth), status, and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Milliseconds()
		userID := GetUserID(r.Context())
		if rec.status >= 500 {
			slog.Error("Request error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		} else if rec.status >= 400 {
			slog.Warn("Request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		} else {
			slog.Info("Request ok",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		}
	})
}
