package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/backend"
	"github.com/ekaya-inc/ekaya-console/pkg/logging"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// FormService builds resolved create, edit and filter forms.
type FormService interface {
	// GetForm loads the schema, object data, profiles and pools the request
	// needs and resolves every field.
	GetForm(ctx context.Context, rc models.ResolutionContext, req models.FormRequest) (*models.Form, error)
}

type formService struct {
	client  BackendClient
	schemas SchemaService
	logger  *zap.Logger
}

// NewFormService creates a new form service.
func NewFormService(client BackendClient, schemas SchemaService, logger *zap.Logger) FormService {
	return &formService{
		client:  client,
		schemas: schemas,
		logger:  logger.Named("forms"),
	}
}

// formInputs is what a form is resolved from.
type formInputs struct {
	data     models.NodeData
	profiles []models.Profile
	pools    []models.ResourcePool
}

func (s *formService) GetForm(ctx context.Context, rc models.ResolutionContext, req models.FormRequest) (*models.Form, error) {
	if req.Kind == "" {
		return nil, fmt.Errorf("kind is required: %w", apperrors.ErrInvalidRequest)
	}

	schemaSet, err := s.schemas.GetSchema(ctx, rc)
	if err != nil {
		return nil, err
	}
	nodeSchema, ok := schemaSet.Lookup(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%s: %w", req.Kind, apperrors.ErrSchemaNotFound)
	}

	var profileSchema *models.NodeSchema
	if !req.IsFilter && !nodeSchema.IsProfile {
		profileSchema, _ = schemaSet.Lookup(models.ProfileKindFor(nodeSchema.Kind))
	}

	var in formInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		switch {
		case req.ObjectID != "":
			node, err := s.loadObject(gctx, rc, nodeSchema, profileSchema, req.ObjectID)
			if err != nil {
				return err
			}
			in.data = node.Data
			if !req.IsFilter {
				in.profiles = node.Profiles
			}
		case len(req.ProfileIDs) > 0 && profileSchema != nil:
			profiles, err := s.loadProfiles(gctx, rc, profileSchema, req.ProfileIDs)
			if err != nil {
				return err
			}
			in.profiles = profiles
		}
		return nil
	})

	if !req.IsFilter {
		g.Go(func() error {
			in.pools = s.loadPools(gctx, rc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	form := &models.Form{
		Kind:     nodeSchema.Kind,
		Label:    nodeSchema.DisplayLabel(),
		ObjectID: req.ObjectID,
		IsFilter: req.IsFilter,
		Profiles: in.profiles,
		Fields: BuildFormFields(nodeSchema, in.data, in.profiles, FormOptions{
			IsFilter: req.IsFilter,
			Pools:    in.pools,
		}),
	}

	s.logger.Debug("Built form",
		zap.String("kind", form.Kind),
		zap.String("object_id", req.ObjectID),
		zap.Bool("filter", req.IsFilter),
		zap.Int("fields", len(form.Fields)),
		zap.Int("profiles", len(form.Profiles)))

	return form, nil
}

func (s *formService) loadObject(ctx context.Context, rc models.ResolutionContext, nodeSchema, profileSchema *models.NodeSchema, id string) (*models.Node, error) {
	data, err := s.client.Query(ctx, rc, backend.ObjectDetailsQuery(nodeSchema, profileSchema), map[string]any{
		"ids": []string{id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", nodeSchema.Kind, id, err)
	}

	node, err := backend.DecodeNode(data, nodeSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", nodeSchema.Kind, id, err)
	}
	return node, nil
}

func (s *formService) loadProfiles(ctx context.Context, rc models.ResolutionContext, profileSchema *models.NodeSchema, ids []string) ([]models.Profile, error) {
	data, err := s.client.Query(ctx, rc, backend.ProfilesQuery(profileSchema), map[string]any{
		"ids": ids,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles, err := backend.DecodeProfiles(data, profileSchema.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return profiles, nil
}

// loadPools returns the resource pools, or none when they cannot be read.
func (s *formService) loadPools(ctx context.Context, rc models.ResolutionContext) []models.ResourcePool {
	data, err := s.client.Query(ctx, rc, backend.PoolsQuery, nil)
	if err != nil {
		s.logger.Warn("Failed to load resource pools",
			zap.String("error", logging.SanitizeError(err)))
		return nil
	}

	pools, err := backend.DecodePools(data)
	if err != nil {
		s.logger.Warn("Failed to decode resource pools", zap.Error(err))
		return nil
	}
	return pools
}

var _ FormService = (*formService)(nil)
