package services

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-console/pkg/logging"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// MenuService serves the navigation menu.
type MenuService interface {
	// GetMenu returns the menu with titles, object paths and tree routes
	// filled in from the schema of rc's branch.
	GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error)
}

type menuService struct {
	client   BackendClient
	schemas  SchemaService
	menuFile string
	logger   *zap.Logger
}

// NewMenuService creates a menu service. When menuFile is set the menu is
// read from that YAML file, otherwise it is fetched from the back-end.
func NewMenuService(client BackendClient, schemas SchemaService, menuFile string, logger *zap.Logger) MenuService {
	return &menuService{
		client:   client,
		schemas:  schemas,
		menuFile: menuFile,
		logger:   logger.Named("menu"),
	}
}

func (s *menuService) GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error) {
	items, err := s.loadItems(ctx, rc)
	if err != nil {
		return nil, err
	}

	schema, err := s.schemas.GetSchema(ctx, rc)
	if err != nil {
		s.logger.Warn("Serving menu without schema decoration",
			zap.String("error", logging.SanitizeError(err)))
		return items, nil
	}

	return decorateMenu(items, schema), nil
}

func (s *menuService) loadItems(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error) {
	if s.menuFile == "" {
		items, err := s.client.GetMenu(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("failed to load menu: %w", err)
		}
		return items, nil
	}

	data, err := os.ReadFile(s.menuFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var items []models.MenuItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse menu file %s: %w", s.menuFile, err)
	}
	return items, nil
}

// decorateMenu returns a copy of items where entries bound to a kind get a
// pluralised schema label as title when they have none, an object list path,
// and a tree route when the kind is hierarchical.
func decorateMenu(items []models.MenuItem, schema *models.SchemaSet) []models.MenuItem {
	if items == nil {
		return nil
	}

	out := make([]models.MenuItem, len(items))
	for i, item := range items {
		if item.Kind != "" {
			if nodeSchema, ok := schema.Lookup(item.Kind); ok {
				if item.Title == "" {
					item.Title = inflection.Plural(nodeSchema.DisplayLabel())
				}
				if item.IconName == "" {
					item.IconName = nodeSchema.Icon
				}
				if nodeSchema.IsHierarchical() {
					item.TreePath = path.Join("/api/tree", item.Kind)
				}
			}
			if item.Path == "" {
				item.Path = path.Join("/objects", item.Kind)
			}
		}
		item.Children = decorateMenu(item.Children, schema)
		out[i] = item
	}
	return out
}

var _ MenuService = (*menuService)(nil)
