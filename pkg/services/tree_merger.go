package services

import (
	"slices"

	"github.com/ekaya-inc/ekaya-console/pkg/models"
)

// MergeTree incorporates a batch of freshly fetched nodes into a tree.
//
// Nodes already present keep their position; their label, metadata and
// branch flag are replaced and their children become the union of the known
// and incoming ids (known order first). A known node that arrives under a
// different parent is moved: it leaves its old parent's children. New nodes
// are appended. Once the
// whole batch is placed, every incoming node is registered once in its
// parent's children, in batch order. A parent that is neither in the tree
// nor in the batch is left alone: the link appears when a later merge
// supplies the parent.
//
// MergeTree does not modify its arguments and is idempotent. An empty batch
// returns existing as-is.
func MergeTree(existing, incoming []models.TreeNode) []models.TreeNode {
	if len(incoming) == 0 {
		return existing
	}

	t := newWorkingTree(existing)
	for _, n := range incoming {
		t.upsert(n)
	}
	for _, n := range incoming {
		t.link(n)
	}
	return t.nodes
}

// workingTree is an ordered node list with an id index.
type workingTree struct {
	nodes []models.TreeNode
	index map[string]int // id -> position in nodes
}

func newWorkingTree(existing []models.TreeNode) *workingTree {
	t := &workingTree{
		nodes: make([]models.TreeNode, 0, len(existing)+1),
		index: make(map[string]int, len(existing)+1),
	}

	if _, ok := models.FindTreeNode(existing, models.RootID); !ok {
		t.insert(models.NewRootNode())
	}
	for _, n := range existing {
		if _, dup := t.index[n.ID]; dup {
			continue
		}
		t.insert(n)
	}
	return t
}

// insert appends a copy of n with its own children slice.
func (t *workingTree) insert(n models.TreeNode) {
	n.Children = unionIDs(nil, n.Children)
	t.index[n.ID] = len(t.nodes)
	t.nodes = append(t.nodes, n)
}

func (t *workingTree) upsert(n models.TreeNode) {
	idx, ok := t.index[n.ID]
	if !ok {
		t.insert(n)
		return
	}

	cur := &t.nodes[idx]
	cur.Label = n.Label
	cur.Metadata = n.Metadata
	cur.IsBranch = n.IsBranch
	cur.Children = unionIDs(cur.Children, n.Children)

	if n.ParentID == "" || n.ParentID == n.ID || n.ParentID == cur.ParentID {
		return
	}
	if old, ok := t.index[cur.ParentID]; ok {
		t.nodes[old].Children = slices.DeleteFunc(t.nodes[old].Children, func(id string) bool {
			return id == n.ID
		})
	}
	cur.ParentID = n.ParentID
}

// link registers n in its parent's children when the parent is known.
func (t *workingTree) link(n models.TreeNode) {
	if n.ParentID == "" || n.ParentID == n.ID {
		return
	}
	idx, ok := t.index[n.ParentID]
	if !ok {
		return
	}

	parent := &t.nodes[idx]
	if !slices.Contains(parent.Children, n.ID) {
		parent.Children = append(parent.Children, n.ID)
	}
}

// unionIDs returns a new slice holding base followed by the ids of extra
// not already present, without duplicates.
func unionIDs(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, group := range [][]string{base, extra} {
		for _, id := range group {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
