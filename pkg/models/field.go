package models

import (
	"encoding/json"
	"fmt"
)

// FieldKind is the kind of an attribute or relationship as declared in the schema.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindTextArea
	KindNumber
	KindBandwidth
	KindBoolean
	KindCheckbox
	KindDropdown
	KindList
	KindJSON
	KindPassword
	KindHashedPassword
	KindURL
	KindEmail
	KindColor
	KindDateTime
	KindIPHost
	KindIPNetwork
	KindMacAddress
	KindRelationshipOne
	KindRelationshipMany
)

var fieldKindNames = map[FieldKind]string{
	KindUnknown:          "Unknown",
	KindText:             "Text",
	KindTextArea:         "TextArea",
	KindNumber:           "Number",
	KindBandwidth:        "Bandwidth",
	KindBoolean:          "Boolean",
	KindCheckbox:         "Checkbox",
	KindDropdown:         "Dropdown",
	KindList:             "List",
	KindJSON:             "JSON",
	KindPassword:         "Password",
	KindHashedPassword:   "HashedPassword",
	KindURL:              "URL",
	KindEmail:            "Email",
	KindColor:            "Color",
	KindDateTime:         "DateTime",
	KindIPHost:           "IPHost",
	KindIPNetwork:        "IPNetwork",
	KindMacAddress:       "MacAddress",
	KindRelationshipOne:  "RelationshipOne",
	KindRelationshipMany: "RelationshipMany",
}

var fieldKindsByName = func() map[string]FieldKind {
	m := make(map[string]FieldKind, len(fieldKindNames))
	for k, name := range fieldKindNames {
		m[name] = k
	}
	return m
}()

// ParseFieldKind maps a backend attribute kind name to a FieldKind.
// Unrecognized names map to KindUnknown, which is treated as raw JSON.
func ParseFieldKind(name string) FieldKind {
	if k, ok := fieldKindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

// String returns the backend name of the kind.
func (k FieldKind) String() string {
	if name, ok := fieldKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// MarshalJSON renders the kind by name.
func (k FieldKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind name.
func (k *FieldKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("field kind must be a string: %w", err)
	}
	*k = ParseFieldKind(name)
	return nil
}

// Shape returns the Value shape carried by fields of this kind.
func (k FieldKind) Shape() ValueShape {
	switch k {
	case KindText, KindTextArea, KindDropdown, KindPassword, KindHashedPassword,
		KindURL, KindEmail, KindColor, KindDateTime, KindIPHost, KindIPNetwork, KindMacAddress:
		return ShapeText
	case KindNumber, KindBandwidth:
		return ShapeNumber
	case KindBoolean, KindCheckbox:
		return ShapeBool
	case KindRelationshipOne:
		return ShapeRef
	case KindRelationshipMany:
		return ShapeRefList
	case KindList, KindJSON, KindUnknown:
		return ShapeRaw
	default:
		return ShapeRaw
	}
}

// IsBoolean reports whether the kind always resolves to a boolean value.
func (k FieldKind) IsBoolean() bool {
	return k == KindBoolean || k == KindCheckbox
}

// IsRelationship reports whether the kind is a relationship to a peer.
func (k FieldKind) IsRelationship() bool {
	return k == KindRelationshipOne || k == KindRelationshipMany
}

// IsSecret reports whether values of this kind must never be prefilled in filters.
func (k FieldKind) IsSecret() bool {
	return k == KindPassword || k == KindHashedPassword
}

// Relationship kinds as declared by the backend schema.
const (
	RelationshipGeneric   = "Generic"
	RelationshipAttribute = "Attribute"
	RelationshipComponent = "Component"
	RelationshipParent    = "Parent"
	RelationshipHierarchy = "Hierarchy"
	RelationshipProfile   = "Profile"
)

// Choice is one option of a Dropdown attribute.
type Choice struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// PoolCandidate is a resource pool eligible to allocate a value for a field.
type PoolCandidate struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display_label"`
	Kind         string `json:"kind"`
}

// FieldSchema describes one attribute or relationship of a node kind.
type FieldSchema struct {
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Kind        FieldKind `json:"kind"`
	Optional    bool      `json:"optional"`
	Unique      bool      `json:"unique"`
	ReadOnly    bool      `json:"read_only"`
	OrderWeight *int      `json:"order_weight,omitempty"`

	// DefaultValue is only meaningful when HasDefault is true. HasDefault is
	// set whenever the schema payload carried a default_value key, even null.
	DefaultValue any  `json:"default_value,omitempty"`
	HasDefault   bool `json:"has_default"`

	Choices []Choice `json:"choices,omitempty"`
	Enum    []any    `json:"enum,omitempty"`

	// Relationship-only fields.
	Peer             string `json:"peer,omitempty"`
	RelationshipKind string `json:"relationship_kind,omitempty"`

	PoolCandidates []PoolCandidate `json:"pool_candidates,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldSchema) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// attributeWire is the backend representation of an attribute schema.
type attributeWire struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	Optional    bool     `json:"optional"`
	Unique      bool     `json:"unique"`
	ReadOnly    bool     `json:"read_only"`
	OrderWeight *int     `json:"order_weight"`
	Choices     []Choice `json:"choices"`
	Enum        []any    `json:"enum"`
}

// relationshipWire is the backend representation of a relationship schema.
type relationshipWire struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Peer        string `json:"peer"`
	Kind        string `json:"kind"`
	Cardinality string `json:"cardinality"`
	Optional    bool   `json:"optional"`
	ReadOnly    bool   `json:"read_only"`
	OrderWeight *int   `json:"order_weight"`
}

// decodeAttributeSchema decodes an attribute schema, tracking whether the
// default_value key was present independently of its value.
func decodeAttributeSchema(data []byte) (FieldSchema, error) {
	var wire attributeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return FieldSchema{}, fmt.Errorf("failed to decode attribute schema: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return FieldSchema{}, fmt.Errorf("failed to decode attribute schema: %w", err)
	}

	field := FieldSchema{
		Name:        wire.Name,
		Label:       wire.Label,
		Description: wire.Description,
		Kind:        ParseFieldKind(wire.Kind),
		Optional:    wire.Optional,
		Unique:      wire.Unique,
		ReadOnly:    wire.ReadOnly,
		OrderWeight: wire.OrderWeight,
		Choices:     wire.Choices,
		Enum:        wire.Enum,
	}

	if raw, ok := keys["default_value"]; ok {
		field.HasDefault = true
		if err := json.Unmarshal(raw, &field.DefaultValue); err != nil {
			return FieldSchema{}, fmt.Errorf("failed to decode default_value of %q: %w", wire.Name, err)
		}
	}

	return field, nil
}

// decodeRelationshipSchema decodes a relationship schema into a FieldSchema
// whose kind encodes the cardinality.
func decodeRelationshipSchema(data []byte) (FieldSchema, error) {
	var wire relationshipWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return FieldSchema{}, fmt.Errorf("failed to decode relationship schema: %w", err)
	}

	kind := KindRelationshipOne
	if wire.Cardinality == "many" {
		kind = KindRelationshipMany
	}

	return FieldSchema{
		Name:             wire.Name,
		Label:            wire.Label,
		Description:      wire.Description,
		Kind:             kind,
		Optional:         wire.Optional,
		ReadOnly:         wire.ReadOnly,
		OrderWeight:      wire.OrderWeight,
		Peer:             wire.Peer,
		RelationshipKind: wire.Kind,
	}, nil
}
