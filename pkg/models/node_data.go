package models

import "strings"

// SourceEntity is the node that supplied a stored value (a profile, a pool, ...).
type SourceEntity struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display_label"`
	Kind         string `json:"__typename"`
}

// IsPool reports whether the entity is a resource pool. Pool kinds follow
// the *Pool naming convention.
func (e *SourceEntity) IsPool() bool {
	return e != nil && strings.HasSuffix(e.Kind, "Pool")
}

// FieldData is the stored state of one field on a node as returned by the backend.
type FieldData struct {
	Value         any           `json:"value"`
	IsDefault     bool          `json:"is_default"`
	IsFromProfile bool          `json:"is_from_profile"`
	IsProtected   bool          `json:"is_protected"`
	Source        *SourceEntity `json:"source"`
}

// IsUserValue reports whether the stored value was entered directly, as
// opposed to being a default, inherited from a profile or allocated by a pool.
func (d FieldData) IsUserValue() bool {
	return !d.IsDefault && !d.IsFromProfile && !d.Source.IsPool()
}

// NodeData maps field names to their stored state. A missing key means the
// field was not returned; a present key with a nil Value is an explicit null.
type NodeData map[string]FieldData

// Field returns the stored state of a field and whether it was present.
func (d NodeData) Field(name string) (FieldData, bool) {
	if d == nil {
		return FieldData{}, false
	}
	f, ok := d[name]
	return f, ok
}

// Node is an object fetched for an edit form.
type Node struct {
	ID           string    `json:"id"`
	DisplayLabel string    `json:"display_label"`
	Kind         string    `json:"__typename"`
	Data         NodeData  `json:"data"`
	Profiles     []Profile `json:"profiles,omitempty"`
}
