// Package models contains domain types for ekaya-console.
package models

import "fmt"

// SourceType represents where the effective value of a field came from.
type SourceType string

// Source type constants, in the order the resolver consults them.
const (
	SourceNone    SourceType = "none"    // No explicit source; value is absent
	SourceUser    SourceType = "user"    // Stored on the node by a person
	SourcePool    SourceType = "pool"    // Allocated from a resource pool
	SourceProfile SourceType = "profile" // Inherited from a profile
	SourceSchema  SourceType = "schema"  // Static default from the schema
)

// String returns the string representation of a SourceType.
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is one of the known tags.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceNone, SourceUser, SourcePool, SourceProfile, SourceSchema:
		return true
	default:
		return false
	}
}

// FieldSource is the provenance of a field value. Profile and pool sources
// carry the entity that supplied the value; other tags leave them empty.
type FieldSource struct {
	Type SourceType `json:"type"`

	// Set for SourceProfile and SourcePool.
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// NoSource returns the none tag.
func NoSource() FieldSource { return FieldSource{Type: SourceNone} }

// UserSource returns the user tag.
func UserSource() FieldSource { return FieldSource{Type: SourceUser} }

// SchemaSource returns the schema default tag.
func SchemaSource() FieldSource { return FieldSource{Type: SourceSchema} }

// ProfileSource returns a profile tag for the given profile.
func ProfileSource(id, label, kind string) FieldSource {
	return FieldSource{Type: SourceProfile, ID: id, Label: label, Kind: kind}
}

// PoolSource returns a pool tag for the given pool.
func PoolSource(id, label, kind string) FieldSource {
	return FieldSource{Type: SourcePool, ID: id, Label: label, Kind: kind}
}

// FieldValue is the effective value of one form field and its provenance.
type FieldValue struct {
	Value  Value       `json:"value"`
	Source FieldSource `json:"source"`
}

// EmptyFieldValue is the fallback: no value, no source.
func EmptyFieldValue() FieldValue {
	return FieldValue{Source: NoSource()}
}

// IsNull reports whether the value is absent.
func (v FieldValue) IsNull() bool {
	return v.Value == nil
}

// Validate checks that exactly one known tag is active and that entity
// tags identify their entity.
func (v FieldValue) Validate() error {
	if !v.Source.Type.IsValid() {
		return fmt.Errorf("invalid field source %q", v.Source.Type)
	}
	switch v.Source.Type {
	case SourceProfile, SourcePool:
		if v.Source.ID == "" {
			return fmt.Errorf("%s source requires an id", v.Source.Type)
		}
	default:
		if v.Source.ID != "" || v.Source.Label != "" || v.Source.Kind != "" {
			return fmt.Errorf("%s source must not carry entity details", v.Source.Type)
		}
	}
	return nil
}
