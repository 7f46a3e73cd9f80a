package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/backend"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/store"
)

// TreeService maintains the per-session navigation tree of hierarchical kinds.
// Every operation loads the stored tree, merges freshly fetched nodes into it
// and saves the result.
type TreeService interface {
	// GetTree returns the stored tree, or a root-only tree.
	GetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error)

	// LoadTopLevel merges the nodes without a parent under the root.
	LoadTopLevel(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error)

	// ExpandBranch merges the immediate children of nodeID.
	ExpandBranch(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error)

	// RevealNode merges everything needed to show nodeID expanded to its
	// position: the top level, its ancestors and their children.
	RevealNode(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error)

	// ResetTree drops the stored tree.
	ResetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) error
}

type treeService struct {
	client  BackendClient
	schemas SchemaService
	store   store.TreeStore
	logger  *zap.Logger
}

// NewTreeService creates a new tree service.
func NewTreeService(client BackendClient, schemas SchemaService, trees store.TreeStore, logger *zap.Logger) TreeService {
	return &treeService{
		client:  client,
		schemas: schemas,
		store:   trees,
		logger:  logger.Named("tree"),
	}
}

func treeKey(rc models.ResolutionContext, sessionID, kind string) store.TreeKey {
	return store.TreeKey{Session: sessionID, Branch: rc.Key(), Kind: kind}
}

// hierarchyKind returns the kind hierarchy queries run against: the root
// generic of kind's hierarchy.
func (s *treeService) hierarchyKind(ctx context.Context, rc models.ResolutionContext, kind string) (string, error) {
	nodeSchema, err := s.schemas.GetNodeSchema(ctx, rc, kind)
	if err != nil {
		return "", err
	}
	if !nodeSchema.IsHierarchical() {
		return "", fmt.Errorf("%s is not hierarchical: %w", kind, apperrors.ErrInvalidRequest)
	}
	return nodeSchema.Hierarchy, nil
}

func (s *treeService) GetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
	if _, err := s.hierarchyKind(ctx, rc, kind); err != nil {
		return nil, err
	}
	return s.load(ctx, treeKey(rc, sessionID, kind))
}

func (s *treeService) LoadTopLevel(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
	hk, err := s.hierarchyKind(ctx, rc, kind)
	if err != nil {
		return nil, err
	}

	nodes, err := s.fetchTopLevel(ctx, rc, hk)
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, treeKey(rc, sessionID, kind), nodes)
}

func (s *treeService) ExpandBranch(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error) {
	hk, err := s.hierarchyKind(ctx, rc, kind)
	if err != nil {
		return nil, err
	}

	children, err := s.fetchChildren(ctx, rc, hk, []string{nodeID})
	if err != nil {
		return nil, err
	}
	return s.merge(ctx, treeKey(rc, sessionID, kind), children)
}

func (s *treeService) RevealNode(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error) {
	hk, err := s.hierarchyKind(ctx, rc, kind)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Query(ctx, rc, backend.AncestorsQuery(hk), map[string]any{
		"ids": []string{nodeID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ancestors of %s: %w", nodeID, err)
	}
	target, ancestors, err := backend.DecodeAncestors(data, hk)
	if err != nil {
		return nil, err
	}

	ancestorIDs := make([]string, 0, len(ancestors))
	for _, a := range ancestors {
		ancestorIDs = append(ancestorIDs, a.ID)
	}

	var topLevel, siblings []models.TreeNode
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topLevel, err = s.fetchTopLevel(gctx, rc, hk)
		return err
	})
	if len(ancestorIDs) > 0 {
		g.Go(func() error {
			var err error
			siblings, err = s.fetchChildren(gctx, rc, hk, ancestorIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Revealing node",
		zap.String("kind", kind),
		zap.String("node_id", nodeID),
		zap.Int("ancestors", len(ancestors)))

	return s.merge(ctx, treeKey(rc, sessionID, kind), topLevel, ancestors, siblings, []models.TreeNode{target})
}

func (s *treeService) ResetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) error {
	if err := s.store.Delete(ctx, treeKey(rc, sessionID, kind)); err != nil {
		return fmt.Errorf("failed to reset tree: %w", err)
	}
	return nil
}

func (s *treeService) fetchTopLevel(ctx context.Context, rc models.ResolutionContext, hk string) ([]models.TreeNode, error) {
	data, err := s.client.Query(ctx, rc, backend.TopLevelQuery(hk), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load top-level %s: %w", hk, err)
	}
	return backend.DecodeTreeNodes(data, hk)
}

func (s *treeService) fetchChildren(ctx context.Context, rc models.ResolutionContext, hk string, parentIDs []string) ([]models.TreeNode, error) {
	data, err := s.client.Query(ctx, rc, backend.ChildrenQuery(hk), map[string]any{
		"parents": parentIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load children of %v: %w", parentIDs, err)
	}
	return backend.DecodeTreeNodes(data, hk)
}

func (s *treeService) load(ctx context.Context, key store.TreeKey) ([]models.TreeNode, error) {
	tree, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree: %w", err)
	}
	if !ok {
		return models.NewTree(), nil
	}
	return tree, nil
}

// merge applies the batches in order to the stored tree and saves it.
// Concurrent merges for one key are last-writer-wins; since merges are
// idempotent a lost batch reappears on the next fetch.
func (s *treeService) merge(ctx context.Context, key store.TreeKey, batches ...[]models.TreeNode) ([]models.TreeNode, error) {
	tree, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	for _, batch := range batches {
		tree = MergeTree(tree, batch)
	}

	if err := s.store.Put(ctx, key, tree); err != nil {
		return nil, fmt.Errorf("failed to save tree: %w", err)
	}
	return tree, nil
}

var _ TreeService = (*treeService)(nil)
