package models

import (
	"encoding/json"
	"fmt"
)

// NodeSchema describes a node, generic or profile kind.
type NodeSchema struct {
	Kind        string `json:"kind"`
	Namespace   string `json:"namespace"`
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`

	// Hierarchy is the root kind of the hierarchy this kind belongs to.
	// Empty for non-hierarchical kinds.
	Hierarchy string `json:"hierarchy,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Children  string `json:"children,omitempty"`

	Attributes    []FieldSchema `json:"attributes"`
	Relationships []FieldSchema `json:"relationships"`

	IsProfile bool `json:"is_profile,omitempty"`
}

// IsHierarchical reports whether nodes of this kind can be shown in a tree.
func (s *NodeSchema) IsHierarchical() bool {
	return s.Hierarchy != ""
}

// DisplayLabel returns the label, falling back to the kind.
func (s *NodeSchema) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Kind
}

// Field returns the attribute or relationship named name.
func (s *NodeSchema) Field(name string) (FieldSchema, bool) {
	for _, f := range s.Attributes {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range s.Relationships {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// UnmarshalJSON decodes the backend schema representation, where attributes
// and relationships have different shapes.
func (s *NodeSchema) UnmarshalJSON(data []byte) error {
	var wire struct {
		Kind          string            `json:"kind"`
		Namespace     string            `json:"namespace"`
		Name          string            `json:"name"`
		Label         string            `json:"label"`
		Description   string            `json:"description"`
		Icon          string            `json:"icon"`
		Hierarchy     string            `json:"hierarchy"`
		Parent        string            `json:"parent"`
		Children      string            `json:"children"`
		Attributes    []json.RawMessage `json:"attributes"`
		Relationships []json.RawMessage `json:"relationships"`
		IsProfile     bool              `json:"is_profile"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode node schema: %w", err)
	}

	*s = NodeSchema{
		Kind:        wire.Kind,
		Namespace:   wire.Namespace,
		Name:        wire.Name,
		Label:       wire.Label,
		Description: wire.Description,
		Icon:        wire.Icon,
		Hierarchy:   wire.Hierarchy,
		Parent:      wire.Parent,
		Children:    wire.Children,
		IsProfile:   wire.IsProfile,
	}
	if s.Kind == "" {
		s.Kind = wire.Namespace + wire.Name
	}

	for _, raw := range wire.Attributes {
		f, err := decodeAttributeSchema(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Kind, err)
		}
		s.Attributes = append(s.Attributes, f)
	}
	for _, raw := range wire.Relationships {
		f, err := decodeRelationshipSchema(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Kind, err)
		}
		s.Relationships = append(s.Relationships, f)
	}

	return nil
}

// SchemaSet is the schema of one branch as returned by the backend.
type SchemaSet struct {
	Hash     string       `json:"main,omitempty"`
	Nodes    []NodeSchema `json:"nodes"`
	Generics []NodeSchema `json:"generics"`
	Profiles []NodeSchema `json:"profiles"`
}

// Lookup finds a kind among nodes, generics and profiles.
func (s *SchemaSet) Lookup(kind string) (*NodeSchema, bool) {
	if s == nil {
		return nil, false
	}
	for _, group := range [][]NodeSchema{s.Nodes, s.Profiles, s.Generics} {
		for i := range group {
			if group[i].Kind == kind {
				return &group[i], true
			}
		}
	}
	return nil, false
}

// ProfileKindFor returns the profile kind generated for a node kind.
func ProfileKindFor(kind string) string {
	return "Profile" + kind
}

// MarkProfiles flags every schema in Profiles as a profile kind.
func (s *SchemaSet) MarkProfiles() {
	for i := range s.Profiles {
		s.Profiles[i].IsProfile = true
	}
}
