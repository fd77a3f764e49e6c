package menu

// Node is one entry of a navigation menu. Sibling order is display order.
type Node struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Icon     string `json:"icon,omitempty"`
	Path     string `json:"path"`
	Order    int    `json:"order,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// FindByPath walks menus depth-first and returns the first node whose path
// equals path.
func FindByPath(menus []Node, path string) (Node, bool) {
	for _, m := range menus {
		if m.Path == path {
			return m, true
		}
		if found, ok := FindByPath(m.Children, path); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Clone deep-copies a menu tree.
func Clone(menus []Node) []Node {
	if menus == nil {
		return nil
	}
	out := make([]Node, len(menus))
	for i, m := range menus {
		out[i] = m
		out[i].Children = Clone(m.Children)
	}
	return out
}
