package models

// MenuItem is one entry of the console navigation menu.
type MenuItem struct {
	Title    string     `json:"title" yaml:"title"`
	Path     string     `json:"path,omitempty" yaml:"path,omitempty"`
	IconName string     `json:"icon_name,omitempty" yaml:"icon_name,omitempty"`
	Kind     string     `json:"kind,omitempty" yaml:"kind,omitempty"`
	TreePath string     `json:"tree_path,omitempty" yaml:"-"`
	Children []MenuItem `json:"children,omitempty" yaml:"children,omitempty"`
}

// BackendConfig is the subset of the backend's public configuration the
// console needs.
type BackendConfig struct {
	Main struct {
		DefaultBranch string `json:"default_branch"`
	} `json:"main"`
}

// DefaultBranch returns the configured default branch, or "main".
func (c *BackendConfig) DefaultBranch() string {
	if c == nil || c.Main.DefaultBranch == "" {
		return "main"
	}
	return c.Main.DefaultBranch
}
