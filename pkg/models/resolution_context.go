package models

import (
	"context"
	"time"
)

// ResolutionContext carries the branch and point in time a request reads
// from. It is passed explicitly to everything that fetches schema, node data,
// profiles or hierarchy edges.
type ResolutionContext struct {
	// Branch is the branch name. Empty means the backend's default branch.
	Branch string

	// At pins reads to a point in time. Nil reads the latest state.
	At *time.Time
}

// Key returns a stable identifier for caching per branch and time.
func (rc ResolutionContext) Key() string {
	key := rc.Branch
	if key == "" {
		key = "-"
	}
	if rc.At != nil {
		key += "@" + rc.At.UTC().Format(time.RFC3339)
	}
	return key
}

// resolutionKey is the context key for storing the resolution context.
type resolutionKey struct{}

// WithResolutionContext returns a new context with the resolution context attached.
func WithResolutionContext(ctx context.Context, rc ResolutionContext) context.Context {
	return context.WithValue(ctx, resolutionKey{}, rc)
}

// GetResolutionContext retrieves the resolution context from ctx.
// Returns a zero value (default branch, latest) when none was attached.
func GetResolutionContext(ctx context.Context) ResolutionContext {
	rc, _ := ctx.Value(resolutionKey{}).(ResolutionContext)
	return rc
}
