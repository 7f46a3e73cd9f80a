package handlers

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/services"
)

// mockFormService implements services.FormService for handler tests.
type mockFormService struct {
	form    *models.Form
	err     error
	lastRC  models.ResolutionContext
	lastReq models.FormRequest
}

func (m *mockFormService) GetForm(ctx context.Context, rc models.ResolutionContext, req models.FormRequest) (*models.Form, error) {
	m.lastRC = rc
	m.lastReq = req
	return m.form, m.err
}

// mockTreeService implements services.TreeService for handler tests.
type mockTreeService struct {
	tree []models.TreeNode
	err  error

	lastOp      string
	lastRC      models.ResolutionContext
	lastSession string
	lastKind    string
	lastNode    string
}

func (m *mockTreeService) record(op string, rc models.ResolutionContext, sessionID, kind, nodeID string) {
	m.lastOp = op
	m.lastRC = rc
	m.lastSession = sessionID
	m.lastKind = kind
	m.lastNode = nodeID
}

func (m *mockTreeService) GetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
	m.record("get", rc, sessionID, kind, "")
	return m.tree, m.err
}

func (m *mockTreeService) LoadTopLevel(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) ([]models.TreeNode, error) {
	m.record("load", rc, sessionID, kind, "")
	return m.tree, m.err
}

func (m *mockTreeService) ExpandBranch(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error) {
	m.record("expand", rc, sessionID, kind, nodeID)
	return m.tree, m.err
}

func (m *mockTreeService) RevealNode(ctx context.Context, rc models.ResolutionContext, sessionID, kind, nodeID string) ([]models.TreeNode, error) {
	m.record("reveal", rc, sessionID, kind, nodeID)
	return m.tree, m.err
}

func (m *mockTreeService) ResetTree(ctx context.Context, rc models.ResolutionContext, sessionID, kind string) error {
	m.record("reset", rc, sessionID, kind, "")
	return m.err
}

// mockMenuService implements services.MenuService for handler tests.
type mockMenuService struct {
	items []models.MenuItem
	err   error
}

func (m *mockMenuService) GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error) {
	return m.items, m.err
}

// mockSchemaService implements services.SchemaService for handler tests.
type mockSchemaService struct {
	schema      *models.SchemaSet
	err         error
	invalidated int
}

func (m *mockSchemaService) GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error) {
	return m.schema, m.err
}

func (m *mockSchemaService) GetNodeSchema(ctx context.Context, rc models.ResolutionContext, kind string) (*models.NodeSchema, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.schema.Lookup(kind)
	if !ok {
		return nil, errSchemaNotFound(kind)
	}
	return s, nil
}

func (m *mockSchemaService) Invalidate() {
	m.invalidated++
}

func errSchemaNotFound(kind string) error {
	return fmt.Errorf("%s: %w", kind, apperrors.ErrSchemaNotFound)
}

var (
	_ services.FormService   = (*mockFormService)(nil)
	_ services.TreeService   = (*mockTreeService)(nil)
	_ services.MenuService   = (*mockMenuService)(nil)
	_ services.SchemaService = (*mockSchemaService)(nil)
)
