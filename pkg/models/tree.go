package models

// RootID is the id of the synthetic root sentinel every navigation tree contains.
const RootID = "root"

// TreeNodeMetadata is opaque to the merger; the UI uses it for icons and routing.
type TreeNodeMetadata struct {
	Kind string `json:"kind,omitempty"`
}

// TreeNode is one entry of the navigation hierarchy.
// Children holds ids, in display order, without duplicates.
type TreeNode struct {
	ID       string           `json:"id"`
	Label    string           `json:"name"`
	ParentID string           `json:"parent"`
	Children []string         `json:"children"`
	IsBranch bool             `json:"isBranch"`
	Metadata TreeNodeMetadata `json:"metadata"`
}

// NewRootNode returns the root sentinel.
func NewRootNode() TreeNode {
	return TreeNode{ID: RootID, Children: []string{}}
}

// NewTree returns a tree containing only the root sentinel.
func NewTree() []TreeNode {
	return []TreeNode{NewRootNode()}
}

// FindTreeNode returns the node with the given id.
func FindTreeNode(tree []TreeNode, id string) (TreeNode, bool) {
	for _, n := range tree {
		if n.ID == id {
			return n, true
		}
	}
	return TreeNode{}, false
}
