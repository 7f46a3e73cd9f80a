package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// DefaultSchemaTTL is how long a branch schema is served from cache.
const DefaultSchemaTTL = time.Minute

// SchemaService serves branch schemas, caching them per resolution context.
type SchemaService interface {
	// GetSchema returns the schema set for rc's branch and time.
	GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error)

	// GetNodeSchema returns the schema of one kind.
	// Returns apperrors.ErrSchemaNotFound for unknown kinds.
	GetNodeSchema(ctx context.Context, rc models.ResolutionContext, kind string) (*models.NodeSchema, error)

	// Invalidate drops every cached schema.
	Invalidate()
}

type schemaEntry struct {
	schema    *models.SchemaSet
	fetchedAt time.Time
}

type schemaService struct {
	client BackendClient
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]schemaEntry
}

// NewSchemaService creates a schema service. A zero ttl disables caching.
func NewSchemaService(client BackendClient, ttl time.Duration, logger *zap.Logger) SchemaService {
	return &schemaService{
		client: client,
		ttl:    ttl,
		logger: logger.Named("schema"),
		now:    time.Now,
		cache:  make(map[string]schemaEntry),
	}
}

func (s *schemaService) GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error) {
	key := rc.Key()

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && s.now().Sub(entry.fetchedAt) < s.ttl {
		return entry.schema, nil
	}

	schema, err := s.client.GetSchema(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema for %s: %w", key, err)
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = schemaEntry{schema: schema, fetchedAt: s.now()}
		s.mu.Unlock()
	}

	s.logger.Debug("Loaded schema",
		zap.String("context", key),
		zap.String("hash", schema.Hash))

	return schema, nil
}

func (s *schemaService) GetNodeSchema(ctx context.Context, rc models.ResolutionContext, kind string) (*models.NodeSchema, error) {
	schema, err := s.GetSchema(ctx, rc)
	if err != nil {
		return nil, err
	}

	nodeSchema, ok := schema.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, apperrors.ErrSchemaNotFound)
	}
	return nodeSchema, nil
}

func (s *schemaService) Invalidate() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

var _ SchemaService = (*schemaService)(nil)
