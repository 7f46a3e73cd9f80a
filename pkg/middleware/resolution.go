package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// ResolutionContext returns middleware that reads the branch and point in
// time from the ?branch= and ?at= query parameters and attaches them to the
// request context. A missing branch resolves to defaultBranch. at accepts
// RFC 3339 timestamps or Unix seconds.
func ResolutionContext(defaultBranch string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := models.ResolutionContext{Branch: r.URL.Query().Get("branch")}
			if rc.Branch == "" {
				rc.Branch = defaultBranch
			}

			if raw := r.URL.Query().Get("at"); raw != "" {
				at, ok := parseAt(raw)
				if !ok {
					badRequest(w, "Invalid 'at' parameter: expected RFC 3339 timestamp or Unix seconds")
					return
				}
				rc.At = &at
			}

			next.ServeHTTP(w, r.WithContext(models.WithResolutionContext(r.Context(), rc)))
		})
	}
}

func parseAt(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}

// badRequest returns a 400 response with JSON error body.
func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "bad_request",
		"message": message,
	})
}
