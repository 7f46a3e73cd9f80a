package models

// FormRequest asks for the fields of a create, edit or filter form.
type FormRequest struct {
	Kind string `json:"kind"`

	// ObjectID is set for edit forms.
	ObjectID string `json:"object_id,omitempty"`

	// ProfileIDs are the profiles chosen on a create form.
	ProfileIDs []string `json:"profile_ids,omitempty"`

	// IsFilter builds a search filter form: no profile or schema defaults.
	IsFilter bool `json:"is_filter,omitempty"`
}

// FormField is one resolved field of a form.
type FormField struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Description    string          `json:"description,omitempty"`
	Kind           FieldKind       `json:"kind"`
	Peer           string          `json:"peer,omitempty"`
	Required       bool            `json:"required"`
	Unique         bool            `json:"unique"`
	Disabled       bool            `json:"disabled"`
	Choices        []Choice        `json:"choices,omitempty"`
	Enum           []any           `json:"enum,omitempty"`
	PoolCandidates []PoolCandidate `json:"pool_candidates,omitempty"`
	Default        FieldValue      `json:"default"`
}

// Form is the set of resolved fields for one kind.
type Form struct {
	Kind     string      `json:"kind"`
	Label    string      `json:"label"`
	ObjectID string      `json:"object_id,omitempty"`
	IsFilter bool        `json:"is_filter"`
	Profiles []Profile   `json:"profiles,omitempty"`
	Fields   []FormField `json:"fields"`
}

// ResourcePool is a pool able to allocate values for a kind's fields.
// Number pools target one attribute of one kind; address and prefix pools
// target relationships whose peer matches their default type.
type ResourcePool struct {
	ID            string `json:"id"`
	DisplayLabel  string `json:"display_label"`
	Kind          string `json:"kind"`
	NodeKind      string `json:"node_kind,omitempty"`
	NodeAttribute string `json:"node_attribute,omitempty"`
	DefaultType   string `json:"default_type,omitempty"`
}

// Candidate returns the pool as a field candidate.
func (p ResourcePool) Candidate() PoolCandidate {
	return PoolCandidate{ID: p.ID, DisplayLabel: p.DisplayLabel, Kind: p.Kind}
}

// Serves reports whether the pool can allocate values for field of kind.
func (p ResourcePool) Serves(kind string, field FieldSchema) bool {
	if field.Kind.IsRelationship() {
		return p.DefaultType != "" && p.DefaultType == field.Peer
	}
	if field.Kind.Shape() == ShapeNumber {
		return p.NodeKind == kind && p.NodeAttribute == field.Name
	}
	return false
}
