package services

import (
	"cmp"
	"slices"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// ResolveFieldValue computes the effective value of one field and where it
// came from. Sources are consulted in order and the first match wins:
//
//  1. user: the node stores a value that is not a default, not inherited
//     from a profile and not allocated by a pool (an explicit null counts)
//  2. pool: the node stores a value allocated by a *Pool entity
//  3. profile: the highest-priority profile that sets the field
//  4. schema: the schema default (Boolean kinds always resolve to a bool)
//  5. none
//
// In filter context only 1 and 2 apply, so search forms are never
// prefilled with inherited values.
//
// ResolveFieldValue is pure: the result depends only on its arguments.
func ResolveFieldValue(field models.FieldSchema, data models.NodeData, profiles []models.Profile, isFilter bool) models.FieldValue {
	if stored, ok := data.Field(field.Name); ok {
		if stored.IsUserValue() {
			return models.FieldValue{
				Value:  models.NewValue(field.Kind, stored.Value),
				Source: models.UserSource(),
			}
		}
		if stored.Source.IsPool() {
			return models.FieldValue{
				Value:  models.NewValue(field.Kind, stored.Value),
				Source: models.PoolSource(stored.Source.ID, stored.Source.DisplayLabel, stored.Source.Kind),
			}
		}
	}

	if isFilter {
		return models.EmptyFieldValue()
	}

	if v, ok := resolveFromProfiles(field, profiles); ok {
		return v
	}

	return resolveFromSchema(field)
}

// resolveFromProfiles picks the profile with the lowest priority value that
// sets the field; equal priorities fall back to the smaller id.
func resolveFromProfiles(field models.FieldSchema, profiles []models.Profile) (models.FieldValue, bool) {
	candidates := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := p.ValueFor(field.Name); ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return models.FieldValue{}, false
	}

	slices.SortStableFunc(candidates, compareProfiles)

	winner := candidates[0]
	raw, _ := winner.ValueFor(field.Name)
	return models.FieldValue{
		Value:  models.NewValue(field.Kind, raw),
		Source: models.ProfileSource(winner.ID, winner.DisplayLabel, winner.Kind),
	}, true
}

// compareProfiles orders profiles by priority ascending, then id ascending.
func compareProfiles(a, b models.Profile) int {
	if c := cmp.Compare(a.EffectivePriority(), b.EffectivePriority()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// resolveFromSchema applies the schema default. Boolean kinds always produce
// a bool: the declared default when it is a bool literal, false otherwise.
// Other kinds use the default whenever the schema declared one, even null.
func resolveFromSchema(field models.FieldSchema) models.FieldValue {
	if field.Kind.IsBoolean() {
		if b, ok := field.DefaultValue.(bool); ok && field.HasDefault {
			return models.FieldValue{Value: models.Bool(b), Source: models.SchemaSource()}
		}
		return models.FieldValue{Value: models.Bool(false), Source: models.NoSource()}
	}

	if field.HasDefault {
		return models.FieldValue{
			Value:  models.NewValue(field.Kind, field.DefaultValue),
			Source: models.SchemaSource(),
		}
	}

	return models.EmptyFieldValue()
}
