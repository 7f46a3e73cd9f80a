package backend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// DecodeNode reads the first object of an ObjectDetailsQuery response.
// Returns apperrors.ErrNotFound when the query matched nothing.
func DecodeNode(data []byte, schema *models.NodeSchema) (*models.Node, error) {
	raw, _, _, err := jsonparser.Get(data, schema.Kind, "edges", "[0]", "node")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, fmt.Errorf("%s: %w", schema.Kind, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", schema.Kind, err)
	}

	node := &models.Node{Data: make(models.NodeData)}
	node.ID, _ = jsonparser.GetString(raw, "id")
	node.DisplayLabel, _ = jsonparser.GetString(raw, "display_label")
	node.Kind, _ = jsonparser.GetString(raw, "__typename")

	for _, attr := range schema.Attributes {
		value, dataType, _, err := jsonparser.Get(raw, attr.Name)
		if err != nil || dataType != jsonparser.Object {
			continue
		}
		var fd models.FieldData
		if err := json.Unmarshal(value, &fd); err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s: %w", schema.Kind, attr.Name, err)
		}
		node.Data[attr.Name] = fd
	}

	for _, rel := range schema.Relationships {
		if !queriedRelationship(rel) {
			continue
		}
		value, dataType, _, err := jsonparser.Get(raw, rel.Name)
		if err != nil || dataType != jsonparser.Object {
			continue
		}
		fd, err := decodeRelationshipData(value, rel.Kind == models.KindRelationshipMany)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s: %w", schema.Kind, rel.Name, err)
		}
		node.Data[rel.Name] = fd
	}

	profiles, err := decodeProfileList(raw, "profiles", "edges")
	if err != nil {
		return nil, err
	}
	node.Profiles = profiles

	return node, nil
}

func decodeRelationshipData(raw []byte, many bool) (models.FieldData, error) {
	if many {
		var wire struct {
			Edges []struct {
				Node map[string]any `json:"node"`
			} `json:"edges"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			return models.FieldData{}, err
		}
		refs := make([]any, 0, len(wire.Edges))
		for _, edge := range wire.Edges {
			if edge.Node != nil {
				refs = append(refs, edge.Node)
			}
		}
		return models.FieldData{Value: refs}, nil
	}

	var wire struct {
		Node       map[string]any `json:"node"`
		Properties struct {
			IsProtected   bool                 `json:"is_protected"`
			IsFromProfile bool                 `json:"is_from_profile"`
			Source        *models.SourceEntity `json:"source"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return models.FieldData{}, err
	}

	fd := models.FieldData{
		IsProtected:   wire.Properties.IsProtected,
		IsFromProfile: wire.Properties.IsFromProfile,
		Source:        wire.Properties.Source,
	}
	if wire.Node != nil {
		fd.Value = wire.Node
	}
	return fd, nil
}

// DecodeProfiles reads a ProfilesQuery response.
func DecodeProfiles(data []byte, profileKind string) ([]models.Profile, error) {
	return decodeProfileList(data, profileKind, "edges")
}

func decodeProfileList(data []byte, keys ...string) ([]models.Profile, error) {
	var profiles []models.Profile
	var decodeErr error

	_, err := jsonparser.ArrayEach(data, func(edge []byte, _ jsonparser.ValueType, _ int, _ error) {
		if decodeErr != nil {
			return
		}
		raw, dataType, _, err := jsonparser.Get(edge, "node")
		if err != nil || dataType != jsonparser.Object {
			return
		}
		var p models.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			decodeErr = err
			return
		}
		profiles = append(profiles, p)
	}, keys...)

	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", decodeErr)
	}
	return profiles, nil
}

// DecodePools reads a PoolsQuery response.
func DecodePools(data []byte) ([]models.ResourcePool, error) {
	var pools []models.ResourcePool

	for _, kind := range []string{NumberPoolKind, IPAddressPoolKind, IPPrefixPoolKind} {
		_, err := jsonparser.ArrayEach(data, func(edge []byte, _ jsonparser.ValueType, _ int, _ error) {
			raw, _, _, err := jsonparser.Get(edge, "node")
			if err != nil {
				return
			}
			pool := models.ResourcePool{}
			pool.ID, _ = jsonparser.GetString(raw, "id")
			pool.DisplayLabel, _ = jsonparser.GetString(raw, "display_label")
			pool.Kind, _ = jsonparser.GetString(raw, "__typename")
			if pool.Kind == "" {
				pool.Kind = kind
			}
			pool.NodeKind, _ = jsonparser.GetString(raw, "node", "value")
			pool.NodeAttribute, _ = jsonparser.GetString(raw, "node_attribute", "value")
			if t, err := jsonparser.GetString(raw, "default_address_type", "value"); err == nil {
				pool.DefaultType = t
			}
			if t, err := jsonparser.GetString(raw, "default_prefix_type", "value"); err == nil {
				pool.DefaultType = t
			}
			if pool.ID != "" {
				pools = append(pools, pool)
			}
		}, kind, "edges")
		if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, fmt.Errorf("failed to read %s: %w", kind, err)
		}
	}

	return pools, nil
}

// DecodeTreeNodes reads a TopLevelQuery or ChildrenQuery response.
// Nodes without a parent hang off the root sentinel.
func DecodeTreeNodes(data []byte, kind string) ([]models.TreeNode, error) {
	nodes := []models.TreeNode{}
	_, err := jsonparser.ArrayEach(data, func(edge []byte, _ jsonparser.ValueType, _ int, _ error) {
		raw, _, _, err := jsonparser.Get(edge, "node")
		if err != nil {
			return
		}
		if n, ok := decodeTreeNode(raw); ok {
			nodes = append(nodes, n)
		}
	}, kind, "edges")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("failed to read %s hierarchy: %w", kind, err)
	}
	return nodes, nil
}

// DecodeAncestors reads an AncestorsQuery response and returns the node and
// its ancestors. Returns apperrors.ErrNotFound when the node does not exist.
func DecodeAncestors(data []byte, kind string) (models.TreeNode, []models.TreeNode, error) {
	raw, _, _, err := jsonparser.Get(data, kind, "edges", "[0]", "node")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return models.TreeNode{}, nil, fmt.Errorf("%s: %w", kind, apperrors.ErrNotFound)
		}
		return models.TreeNode{}, nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}

	target, ok := decodeTreeNode(raw)
	if !ok {
		return models.TreeNode{}, nil, fmt.Errorf("%s: %w", kind, apperrors.ErrNotFound)
	}

	ancestors := []models.TreeNode{}
	_, err = jsonparser.ArrayEach(raw, func(edge []byte, _ jsonparser.ValueType, _ int, _ error) {
		node, _, _, err := jsonparser.Get(edge, "node")
		if err != nil {
			return
		}
		if n, ok := decodeTreeNode(node); ok {
			ancestors = append(ancestors, n)
		}
	}, "ancestors", "edges")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return models.TreeNode{}, nil, fmt.Errorf("failed to read ancestors: %w", err)
	}

	return target, ancestors, nil
}

func decodeTreeNode(raw []byte) (models.TreeNode, bool) {
	id, err := jsonparser.GetString(raw, "id")
	if err != nil || id == "" {
		return models.TreeNode{}, false
	}

	n := models.TreeNode{ID: id, ParentID: models.RootID}
	n.Label, _ = jsonparser.GetString(raw, "display_label")
	n.Metadata.Kind, _ = jsonparser.GetString(raw, "__typename")
	if parentID, err := jsonparser.GetString(raw, "parent", "node", "id"); err == nil && parentID != "" {
		n.ParentID = parentID
	}
	if count, err := jsonparser.GetInt(raw, "children", "count"); err == nil {
		n.IsBranch = count > 0
	}
	if edges, dataType, _, err := jsonparser.Get(raw, "children", "edges"); err == nil && dataType == jsonparser.Array {
		n.Children = []string{}
		_, _ = jsonparser.ArrayEach(edges, func(edge []byte, _ jsonparser.ValueType, _ int, _ error) {
			if childID, err := jsonparser.GetString(edge, "node", "id"); err == nil && childID != "" {
				n.Children = append(n.Children, childID)
			}
		})
		n.IsBranch = n.IsBranch || len(n.Children) > 0
	}
	return n, true
}
