package services

import (
	"slices"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// FormOptions controls how a schema is mapped to form fields.
type FormOptions struct {
	// IsFilter builds a search filter form.
	IsFilter bool

	// Pools are the resource pools available for the kind.
	Pools []models.ResourcePool
}

// BuildFormFields maps a node schema to ordered form fields, resolving each
// field's value from the node data, its profiles and the schema defaults.
// Attributes come before relationships; within each group fields are
// ordered by order_weight, unweighted fields last in schema order.
func BuildFormFields(schema *models.NodeSchema, data models.NodeData, profiles []models.Profile, opts FormOptions) []models.FormField {
	if schema == nil {
		return nil
	}

	fields := make([]models.FormField, 0, len(schema.Attributes)+len(schema.Relationships))

	for _, attr := range sortByWeight(schema.Attributes) {
		if !includeAttribute(schema, attr, opts.IsFilter) {
			continue
		}
		fields = append(fields, buildFormField(schema.Kind, attr, data, profiles, opts))
	}

	for _, rel := range sortByWeight(schema.Relationships) {
		if !includeRelationship(rel) {
			continue
		}
		fields = append(fields, buildFormField(schema.Kind, rel, data, profiles, opts))
	}

	return fields
}

func buildFormField(kind string, field models.FieldSchema, data models.NodeData, profiles []models.Profile, opts FormOptions) models.FormField {
	stored, _ := data.Field(field.Name)

	ff := models.FormField{
		Name:        field.Name,
		Label:       field.DisplayLabel(),
		Description: field.Description,
		Kind:        field.Kind,
		Peer:        field.Peer,
		Required:    !field.Optional && !opts.IsFilter,
		Unique:      field.Unique,
		Disabled:    (field.ReadOnly || stored.IsProtected) && !opts.IsFilter,
		Choices:     field.Choices,
		Enum:        field.Enum,
		Default:     ResolveFieldValue(field, data, profiles, opts.IsFilter),
	}

	if !opts.IsFilter {
		ff.PoolCandidates = slices.Clone(field.PoolCandidates)
		for _, pool := range opts.Pools {
			if pool.Serves(kind, field) {
				ff.PoolCandidates = append(ff.PoolCandidates, pool.Candidate())
			}
		}
	}

	return ff
}

// includeAttribute skips profile metadata on non-profile kinds and secrets
// in filter forms.
func includeAttribute(schema *models.NodeSchema, attr models.FieldSchema, isFilter bool) bool {
	if !schema.IsProfile && (attr.Name == models.ProfileNameField || attr.Name == models.ProfilePriorityField) {
		return false
	}
	if isFilter && attr.Kind.IsSecret() {
		return false
	}
	return true
}

// includeRelationship keeps relationships a person edits directly: generic
// and attribute relationships, and parent/component relationships of
// cardinality one. Hierarchy and profile relationships are managed elsewhere.
func includeRelationship(rel models.FieldSchema) bool {
	switch rel.RelationshipKind {
	case models.RelationshipHierarchy, models.RelationshipProfile:
		return false
	case models.RelationshipParent, models.RelationshipComponent:
		return rel.Kind == models.KindRelationshipOne
	default:
		return true
	}
}

// sortByWeight returns the fields ordered by order_weight without touching
// the schema's slice.
func sortByWeight(fields []models.FieldSchema) []models.FieldSchema {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b models.FieldSchema) int {
		switch {
		case a.OrderWeight == nil && b.OrderWeight == nil:
			return 0
		case a.OrderWeight == nil:
			return 1
		case b.OrderWeight == nil:
			return -1
		default:
			return *a.OrderWeight - *b.OrderWeight
		}
	})
	return sorted
}
