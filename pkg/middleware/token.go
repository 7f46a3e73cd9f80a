package middleware

import (
	"net/http"
	"strings"

	"github.com/ekaya-inc/ekaya-console/pkg/backend"
)

// ForwardToken returns middleware that passes the caller's credentials
// through to the back-end: a bearer token from Authorization, or the value
// of apiKeyHeader. Requests without either use the configured service token.
func ForwardToken(apiKeyHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			} else if apiKeyHeader != "" {
				token = r.Header.Get(apiKeyHeader)
			}

			if token != "" {
				r = r.WithContext(backend.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
