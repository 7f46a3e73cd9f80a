package backend

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

const (
	refFields    = "id display_label __typename"
	sourceFields = "source { " + refFields + " }"
)

// queryWriter emits an indented GraphQL selection set.
type queryWriter struct {
	sb    strings.Builder
	depth int
}

func (w *queryWriter) line(s string) {
	w.sb.WriteString(strings.Repeat("  ", w.depth))
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *queryWriter) open(s string) {
	w.line(s + " {")
	w.depth++
}

func (w *queryWriter) close() {
	w.depth--
	w.line("}")
}

func (w *queryWriter) String() string {
	return w.sb.String()
}

// queriedRelationship reports whether a relationship's value is fetched
// with the object. Hierarchy edges come from the tree queries and profiles
// from their own selection.
func queriedRelationship(rel models.FieldSchema) bool {
	return rel.RelationshipKind != models.RelationshipHierarchy && rel.RelationshipKind != models.RelationshipProfile
}

// ObjectDetailsQuery selects one object of schema's kind with the value and
// provenance of every field. When profileSchema is set, the attached
// profiles are selected with their candidate values.
// Variables: $ids.
func ObjectDetailsQuery(schema *models.NodeSchema, profileSchema *models.NodeSchema) string {
	w := &queryWriter{}
	w.open("query ObjectDetails($ids: [ID])")
	w.open(schema.Kind + "(ids: $ids)")
	w.open("edges")
	w.open("node")
	w.line(refFields)

	for _, attr := range schema.Attributes {
		w.open(attr.Name)
		w.line("value is_default is_from_profile is_protected")
		w.line(sourceFields)
		w.close()
	}

	for _, rel := range schema.Relationships {
		if !queriedRelationship(rel) {
			continue
		}
		w.open(rel.Name)
		if rel.Kind == models.KindRelationshipMany {
			w.line("edges { node { " + refFields + " } }")
		} else {
			w.line("node { " + refFields + " }")
			w.line("properties { is_protected is_from_profile " + sourceFields + " }")
		}
		w.close()
	}

	if profileSchema != nil {
		w.open("profiles")
		w.open("edges")
		w.open("node")
		w.line(refFields)
		w.open("... on " + profileSchema.Kind)
		writeProfileValues(w, profileSchema)
		w.close()
		w.close()
		w.close()
		w.close()
	}

	w.close()
	w.close()
	w.close()
	w.close()
	return w.String()
}

// ProfilesQuery selects profiles of profileSchema's kind with their priority
// and candidate values. Variables: $ids.
func ProfilesQuery(profileSchema *models.NodeSchema) string {
	w := &queryWriter{}
	w.open("query Profiles($ids: [ID])")
	w.open(profileSchema.Kind + "(ids: $ids)")
	w.open("edges")
	w.open("node")
	w.line(refFields)
	writeProfileValues(w, profileSchema)
	w.close()
	w.close()
	w.close()
	w.close()
	return w.String()
}

func writeProfileValues(w *queryWriter, profileSchema *models.NodeSchema) {
	w.line(models.ProfilePriorityField + " { value }")
	for _, attr := range profileSchema.Attributes {
		if attr.Name == models.ProfileNameField || attr.Name == models.ProfilePriorityField {
			continue
		}
		w.line(attr.Name + " { value }")
	}
	for _, rel := range profileSchema.Relationships {
		if !queriedRelationship(rel) {
			continue
		}
		if rel.Kind == models.KindRelationshipMany {
			w.line(rel.Name + " { edges { node { " + refFields + " } } }")
		} else {
			w.line(rel.Name + " { node { " + refFields + " } }")
		}
	}
}

// Pool kinds able to allocate values for node fields.
const (
	NumberPoolKind    = "CoreNumberPool"
	IPAddressPoolKind = "CoreIPAddressPool"
	IPPrefixPoolKind  = "CoreIPPrefixPool"
)

// PoolsQuery selects every resource pool with the attributes that tell
// which fields it serves.
var PoolsQuery = fmt.Sprintf(`query Pools {
  %[1]s { edges { node { %[4]s node { value } node_attribute { value } } } }
  %[2]s { edges { node { %[4]s default_address_type { value } } } }
  %[3]s { edges { node { %[4]s default_prefix_type { value } } } }
}
`, NumberPoolKind, IPAddressPoolKind, IPPrefixPoolKind, refFields)

const treeNodeFields = refFields + " parent { node { id } } children { count }"

// ancestorFields also lists child ids: a reveal fetches every ancestor's
// children in the same merge, so the ids never dangle.
const ancestorFields = refFields + " parent { node { id } } children { count edges { node { id } } }"

// TopLevelQuery selects the nodes of a hierarchy that have no parent.
func TopLevelQuery(kind string) string {
	return fmt.Sprintf(`query TopLevel {
  %s(parent__isnull: true) {
    edges { node { %s } }
  }
}
`, kind, treeNodeFields)
}

// ChildrenQuery selects the immediate children of the nodes in $parents.
func ChildrenQuery(kind string) string {
	return fmt.Sprintf(`query Children($parents: [ID]) {
  %s(parent__ids: $parents) {
    edges { node { %s } }
  }
}
`, kind, treeNodeFields)
}

// AncestorsQuery selects a node and all its ancestors. Variables: $ids.
func AncestorsQuery(kind string) string {
	return fmt.Sprintf(`query Ancestors($ids: [ID]) {
  %s(ids: $ids) {
    edges {
      node {
        %s
        ancestors { edges { node { %s } } }
      }
    }
  }
}
`, kind, treeNodeFields, ancestorFields)
}
