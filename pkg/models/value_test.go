package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValue(t *testing.T) {
	tests := []struct {
		name string
		kind FieldKind
		raw  any
		want Value
	}{
		{name: "null", kind: KindText, raw: nil, want: nil},
		{name: "text", kind: KindText, raw: "hello", want: Text("hello")},
		{name: "dropdown", kind: KindDropdown, raw: "red", want: Text("red")},
		{name: "text from number", kind: KindText, raw: float64(42), want: Text("42")},
		{name: "number", kind: KindNumber, raw: float64(65001), want: Number(65001)},
		{name: "bandwidth from int", kind: KindBandwidth, raw: 1000, want: Number(1000)},
		{name: "number from string", kind: KindNumber, raw: "12.5", want: Number(12.5)},
		{name: "number from json.Number", kind: KindNumber, raw: json.Number("7"), want: Number(7)},
		{name: "unparseable number", kind: KindNumber, raw: "abc", want: Raw{V: "abc"}},
		{name: "boolean", kind: KindBoolean, raw: true, want: Bool(true)},
		{name: "checkbox from string", kind: KindCheckbox, raw: "false", want: Bool(false)},
		{name: "boolean from garbage", kind: KindBoolean, raw: "maybe", want: Raw{V: "maybe"}},
		{name: "json", kind: KindJSON, raw: map[string]any{"a": float64(1)}, want: Raw{V: map[string]any{"a": float64(1)}}},
		{name: "list", kind: KindList, raw: []any{"a"}, want: Raw{V: []any{"a"}}},
		{
			name: "ref",
			kind: KindRelationshipOne,
			raw:  map[string]any{"id": "s1", "display_label": "Paris", "__typename": "LocationSite"},
			want: Ref{ID: "s1", DisplayLabel: "Paris", Kind: "LocationSite"},
		},
		{
			name: "ref wrapper",
			kind: KindRelationshipOne,
			raw:  map[string]any{"node": map[string]any{"id": "s1"}},
			want: Ref{ID: "s1"},
		},
		{
			name: "ref without id",
			kind: KindRelationshipOne,
			raw:  map[string]any{"display_label": "x"},
			want: Raw{V: map[string]any{"display_label": "x"}},
		},
		{
			name: "ref list",
			kind: KindRelationshipMany,
			raw:  []any{map[string]any{"id": "t1"}, map[string]any{"node": map[string]any{"id": "t2"}}},
			want: RefList{{ID: "t1"}, {ID: "t2"}},
		},
		{
			name: "ref list wrapper",
			kind: KindRelationshipMany,
			raw:  map[string]any{"edges": []any{map[string]any{"node": map[string]any{"id": "t1"}}}},
			want: RefList{{ID: "t1"}},
		},
		{name: "empty ref list", kind: KindRelationshipMany, raw: []any{}, want: RefList{}},
		{name: "already typed", kind: KindNumber, raw: Text("x"), want: Text("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewValue(tt.kind, tt.raw))
		})
	}
}

func TestRaw_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FieldValue{Value: Raw{V: []any{"a", float64(1)}}, Source: UserSource()})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"value": ["a", 1], "source": {"type": "user"}}`, string(data))
}
