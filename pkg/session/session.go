// Package session issues the anonymous session id that navigation trees are
// stored under.
package session

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/config"
)

// keyID is the session value holding the session id.
const keyID = "id"

// Manager reads and issues session ids stored in a signed cookie.
type Manager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// NewManager creates a session manager.
//
// The secret is SHA-256 hashed to derive a 32-byte signing key; it must be
// the same on every replica. Cookies are HttpOnly and SameSite=Lax.
func NewManager(cfg config.SessionConfig, logger *zap.Logger) *Manager {
	key := sha256.Sum256([]byte(cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAgeHours * 3600,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store:  store,
		name:   cfg.CookieName,
		logger: logger.Named("session"),
	}
}

// Middleware ensures every request carries a session id, issuing a new
// one (and its cookie) when the request has none or an invalid cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get returns a fresh session alongside a decode error for tampered
		// or stale cookies.
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			m.logger.Debug("Replacing invalid session cookie", zap.Error(err))
		}

		id, _ := sess.Values[keyID].(string)
		if _, parseErr := uuid.Parse(id); parseErr != nil {
			id = uuid.NewString()
			sess.Values[keyID] = id
			if err := sess.Save(r, w); err != nil {
				m.logger.Error("Failed to save session", zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// idKey is the context key for the session id.
type idKey struct{}

// WithID returns a new context carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the session id attached by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}
