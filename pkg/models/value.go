package models

import (
	"encoding/json"
	"strconv"

	"github.com/ekaya-inc/ekaya-console/pkg/jsonutil"
)

// ValueShape identifies which concrete Value type a field kind carries.
type ValueShape int

const (
	ShapeRaw ValueShape = iota
	ShapeText
	ShapeNumber
	ShapeBool
	ShapeRef
	ShapeRefList
)

// Value is the typed value of a form field.
// Concrete types: Text, Number, Bool, Ref, RefList and Raw. A nil Value is null.
type Value interface {
	Shape() ValueShape
}

// Text is the value of string-like attributes (Text, Dropdown, URL, ...).
type Text string

// Number is the value of numeric attributes.
type Number float64

// Bool is the value of Boolean and Checkbox attributes.
type Bool bool

// Ref points at another node. Used by cardinality-one relationships and as
// the source of pool and profile values.
type Ref struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display_label,omitempty"`
	Kind         string `json:"__typename,omitempty"`
}

// RefList is the value of cardinality-many relationships.
type RefList []Ref

// Raw holds values of JSON and List attributes, and values that could not be
// coerced into the shape their kind expects.
type Raw struct {
	V any
}

func (Text) Shape() ValueShape { return ShapeText }
func (Number) Shape() ValueShape { return ShapeNumber }
func (Bool) Shape() ValueShape { return ShapeBool }
func (Ref) Shape() ValueShape { return ShapeRef }
func (RefList) Shape() ValueShape { return ShapeRefList }
func (Raw) Shape() ValueShape { return ShapeRaw }

// MarshalJSON renders the wrapped value as-is.
func (r Raw) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.V)
}

// NewValue converts a loosely typed backend value into the Value shape
// required by kind. Returns nil for null input.
func NewValue(kind FieldKind, raw any) Value {
	if raw == nil {
		return nil
	}
	if v, ok := raw.(Value); ok {
		return v
	}

	switch kind.Shape() {
	case ShapeText:
		if s, ok := raw.(string); ok {
			return Text(s)
		}
		if s, ok := jsonutil.ScalarString(raw); ok {
			return Text(s)
		}
		return Raw{V: raw}
	case ShapeNumber:
		if f, ok := toFloat(raw); ok {
			return Number(f)
		}
		return Raw{V: raw}
	case ShapeBool:
		switch b := raw.(type) {
		case bool:
			return Bool(b)
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return Bool(parsed)
			}
		}
		return Raw{V: raw}
	case ShapeRef:
		if ref, ok := toRef(raw); ok {
			return ref
		}
		return Raw{V: raw}
	case ShapeRefList:
		if refs, ok := toRefList(raw); ok {
			return refs
		}
		return Raw{V: raw}
	default:
		return Raw{V: raw}
	}
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toRef accepts {id, display_label, __typename} objects and the GraphQL
// relationship wrapper {node: {...}}.
func toRef(raw any) (Ref, bool) {
	switch r := raw.(type) {
	case Ref:
		return r, true
	case map[string]any:
		if node, ok := r["node"]; ok {
			if node == nil {
				return Ref{}, false
			}
			return toRef(node)
		}
		id, ok := r["id"].(string)
		if !ok || id == "" {
			return Ref{}, false
		}
		ref := Ref{ID: id}
		ref.DisplayLabel, _ = r["display_label"].(string)
		ref.Kind, _ = r["__typename"].(string)
		return ref, true
	default:
		return Ref{}, false
	}
}

// toRefList accepts lists of refs and the GraphQL wrapper {edges: [{node: {...}}]}.
func toRefList(raw any) (RefList, bool) {
	switch r := raw.(type) {
	case RefList:
		return r, true
	case []Ref:
		return RefList(r), true
	case map[string]any:
		edges, ok := r["edges"]
		if !ok {
			return nil, false
		}
		return toRefList(edges)
	case []any:
		refs := make(RefList, 0, len(r))
		for _, item := range r {
			ref, ok := toRef(item)
			if !ok {
				return nil, false
			}
			refs = append(refs, ref)
		}
		return refs, true
	default:
		return nil, false
	}
}
