package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UnmarshalJSON(t *testing.T) {
	data := `{
		"id": "p1",
		"display_label": "Default",
		"__typename": "ProfileInfraDevice",
		"profile_name": {"value": "Default"},
		"profile_priority": {"value": 1000},
		"description": {"value": "from profile"},
		"asn": {"value": null},
		"site": {"node": {"id": "s1", "display_label": "Paris"}},
		"owner": {"node": null},
		"tags": {"edges": []},
		"unrelated": "scalar"
	}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Default", p.DisplayLabel)
	assert.Equal(t, "ProfileInfraDevice", p.Kind)
	require.NotNil(t, p.Priority)
	assert.Equal(t, int64(1000), *p.Priority)

	assert.NotContains(t, p.Values, ProfileNameField)
	assert.NotContains(t, p.Values, ProfilePriorityField)
	assert.NotContains(t, p.Values, "unrelated")

	v, ok := p.ValueFor("description")
	assert.True(t, ok)
	assert.Equal(t, "from profile", v)

	_, ok = p.ValueFor("asn")
	assert.False(t, ok, "null values are not candidates")
	assert.True(t, p.Values["asn"].IsSet)

	site, ok := p.ValueFor("site")
	assert.True(t, ok)
	assert.Equal(t, Ref{ID: "s1", DisplayLabel: "Paris"}, NewValue(KindRelationshipOne, site))

	_, ok = p.ValueFor("owner")
	assert.False(t, ok)
	_, ok = p.ValueFor("tags")
	assert.False(t, ok)
	_, ok = p.ValueFor("missing")
	assert.False(t, ok)
}

func TestProfile_UnmarshalJSON_Priority(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *int64
	}{
		{name: "number", data: `{"id": "p", "profile_priority": {"value": 10}}`, want: ptr(int64(10))},
		{name: "string", data: `{"id": "p", "profile_priority": {"value": "20"}}`, want: ptr(int64(20))},
		{name: "null", data: `{"id": "p", "profile_priority": {"value": null}}`},
		{name: "missing", data: `{"id": "p"}`},
		{name: "flat", data: `{"id": "p", "priority": 30}`, want: ptr(int64(30))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Profile
			require.NoError(t, json.Unmarshal([]byte(tt.data), &p))
			assert.Equal(t, tt.want, p.Priority)
		})
	}
}

func TestProfile_UnmarshalJSON_FlatValues(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "p1", "kind": "ProfileInfraDevice", "priority": 5,
		"values": {"description": {"value": "x", "is_set": true}}
	}`), &p))

	assert.Equal(t, "ProfileInfraDevice", p.Kind)
	v, ok := p.ValueFor("description")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestProfile_EffectivePriority(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), Profile{}.EffectivePriority())
	assert.Equal(t, int64(-1), Profile{Priority: ptr(int64(-1))}.EffectivePriority())
}

func ptr[T any](v T) *T { return &v }
