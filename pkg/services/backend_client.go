package services

import (
	"context"
	"encoding/json"

	"github.com/ekaya-inc/ekaya-console/pkg/backend"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// BackendClient is the subset of the back-end API the services use.
type BackendClient interface {
	Query(ctx context.Context, rc models.ResolutionContext, query string, variables map[string]any) (json.RawMessage, error)
	GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error)
	GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error)
}

var _ BackendClient = (*backend.Client)(nil)
