package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ekaya-inc/ekaya-console/pkg/jsonutil"
)

// ProfileValue is a candidate value carried by a profile for one field.
// IsSet distinguishes "present with null" from "not provided".
type ProfileValue struct {
	Value any  `json:"value"`
	IsSet bool `json:"is_set"`
}

// Profile is a named bundle of field values attachable to many nodes.
// Profiles are read-only snapshots fetched per form render.
type Profile struct {
	ID           string                  `json:"id"`
	DisplayLabel string                  `json:"display_label"`
	Kind         string                  `json:"kind"`
	Priority     *int64                  `json:"priority,omitempty"`
	Values       map[string]ProfileValue `json:"values"`
}

// Profile metadata attributes that are never candidate values.
const (
	ProfileNameField     = "profile_name"
	ProfilePriorityField = "profile_priority"
)

// EffectivePriority returns the priority used for ordering. A missing
// priority sorts last.
func (p Profile) EffectivePriority() int64 {
	if p.Priority == nil {
		return math.MaxInt64
	}
	return *p.Priority
}

// ValueFor returns the profile's value for field when the profile sets it.
// Only a present, non-null entry counts.
func (p Profile) ValueFor(field string) (any, bool) {
	v, ok := p.Values[field]
	if !ok || !v.IsSet || v.Value == nil {
		return nil, false
	}
	return v.Value, true
}

// UnmarshalJSON decodes the backend's flat profile representation:
//
//	{"id": "...", "display_label": "...", "__typename": "ProfileInfraDevice",
//	 "profile_priority": {"value": 1000}, "description": {"value": "x"}, ...}
//
// Every other key holding an attribute ({value}) or relationship ({node} or
// {edges}) wrapper becomes a candidate value.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	*p = Profile{Values: make(map[string]ProfileValue)}

	for key, raw := range fields {
		switch key {
		case "id":
			_ = json.Unmarshal(raw, &p.ID)
		case "display_label":
			_ = json.Unmarshal(raw, &p.DisplayLabel)
		case "__typename", "kind":
			_ = json.Unmarshal(raw, &p.Kind)
		case ProfileNameField:
		case ProfilePriorityField:
			var wrapper struct {
				Value json.RawMessage `json:"value"`
			}
			if err := json.Unmarshal(raw, &wrapper); err == nil {
				if prio, ok := jsonutil.FlexibleInt64(wrapper.Value); ok {
					p.Priority = &prio
				}
			}
		case "priority":
			if prio, ok := jsonutil.FlexibleInt64(raw); ok {
				p.Priority = &prio
			}
		case "values":
			var values map[string]ProfileValue
			if err := json.Unmarshal(raw, &values); err == nil {
				for name, v := range values {
					p.Values[name] = v
				}
			}
		default:
			if v, ok := decodeProfileValue(raw); ok {
				p.Values[key] = v
			}
		}
	}

	return nil
}

// decodeProfileValue unwraps {value}, {node} and {edges} wrappers.
// JSON null means the field is present but unset.
func decodeProfileValue(raw json.RawMessage) (ProfileValue, bool) {
	if string(raw) == "null" {
		return ProfileValue{IsSet: true}, true
	}

	var wrapper map[string]any
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return ProfileValue{}, false
	}

	if v, ok := wrapper["value"]; ok {
		return ProfileValue{Value: v, IsSet: true}, true
	}
	if node, ok := wrapper["node"]; ok {
		if node == nil {
			return ProfileValue{IsSet: true}, true
		}
		return ProfileValue{Value: wrapper, IsSet: true}, true
	}
	if edges, ok := wrapper["edges"].([]any); ok {
		if len(edges) == 0 {
			return ProfileValue{IsSet: true}, true
		}
		return ProfileValue{Value: wrapper, IsSet: true}, true
	}
	return ProfileValue{}, false
}
