// Package store keeps per-session navigation trees between requests.
package store

import (
	"context"
	"strings"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// TreeKey identifies one navigation tree: a session browsing one kind's
// hierarchy on one branch (and point in time).
type TreeKey struct {
	Session string
	Branch  string
	Kind    string
}

// String returns the key as a colon-separated storage key.
func (k TreeKey) String() string {
	return strings.Join([]string{"tree", k.Session, k.Branch, k.Kind}, ":")
}

// TreeStore persists navigation trees.
type TreeStore interface {
	// Get returns the stored tree and whether one was found.
	Get(ctx context.Context, key TreeKey) ([]models.TreeNode, bool, error)
	// Put stores the tree, resetting its expiry.
	Put(ctx context.Context, key TreeKey, tree []models.TreeNode) error
	// Delete removes the tree. Deleting a missing tree is not an error.
	Delete(ctx context.Context, key TreeKey) error
}
