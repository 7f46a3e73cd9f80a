package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
)

// tokenKey is the context key for a per-request back-end token.
type tokenKey struct{}

// WithToken attaches a token forwarded from the incoming request. It takes
// precedence over the configured service token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the forwarded token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// authorize sets the credentials header. JWTs are sent as bearer tokens and
// rejected locally once expired; anything else is an API key.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token := c.token
	if forwarded, ok := TokenFromContext(ctx); ok {
		token = forwarded
	}
	if token == "" {
		return nil
	}

	if !isJWT(token) {
		req.Header.Set(c.apiKeyHeader, token)
		return nil
	}

	exp, err := tokenExpiry(token)
	if err != nil {
		// Three dot-separated segments that are not a JWT: treat as an API key.
		req.Header.Set(c.apiKeyHeader, token)
		return nil
	}
	if !exp.IsZero() && !c.now().Before(exp) {
		return apperrors.ErrTokenExpired
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func isJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// tokenExpiry reads the exp claim without verifying the signature; the
// back-end does the verification. Zero time means no exp claim.
func tokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
