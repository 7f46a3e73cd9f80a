package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

type memoryEntry struct {
	tree      []models.TreeNode
	expiresAt time.Time
}

type memoryTreeStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryTreeStore creates an in-process tree store. Trees untouched for
// ttl are dropped; a zero ttl keeps them forever.
func NewMemoryTreeStore(ttl time.Duration) TreeStore {
	return &memoryTreeStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryTreeStore) Get(_ context.Context, key TreeKey) ([]models.TreeNode, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key.String()]
	if !ok {
		return nil, false, nil
	}
	if s.expired(entry) {
		delete(s.entries, key.String())
		return nil, false, nil
	}
	return cloneTree(entry.tree), true, nil
}

func (s *memoryTreeStore) Put(_ context.Context, key TreeKey, tree []models.TreeNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	entry := memoryEntry{tree: cloneTree(tree)}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key.String()] = entry
	return nil
}

func (s *memoryTreeStore) Delete(_ context.Context, key TreeKey) error {
	s.mu.Lock()
	delete(s.entries, key.String())
	s.mu.Unlock()
	return nil
}

func (s *memoryTreeStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}

// evictExpired drops expired trees. Caller holds mu.
func (s *memoryTreeStore) evictExpired() {
	for k, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, k)
		}
	}
}

// cloneTree copies nodes and their children slices so callers never share
// state with the store.
func cloneTree(tree []models.TreeNode) []models.TreeNode {
	out := make([]models.TreeNode, len(tree))
	for i, n := range tree {
		n.Children = slices.Clone(n.Children)
		out[i] = n
	}
	return out
}

var _ TreeStore = (*memoryTreeStore)(nil)
