package menu

import (
	"cmp"
	"slices"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

// DefaultOrder is the sort key of routes without an explicit order.
const DefaultOrder = 999

// Generate derives the menu tree of a route tree. Routes hidden in menu are
// skipped together with their children. A route hiding its children becomes
// a leaf pointing at its redirect (or itself); an external link replaces the
// path. Siblings are stably sorted by order.
func Generate(tree []routes.Node) []Node {
	return generate(tree, "")
}

func generate(nodes []routes.Node, parent string) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Meta.HideInMenu {
			continue
		}
		full := routes.JoinPath(parent, n.Path)
		m := Node{
			Key:   n.Name,
			Label: cmp.Or(n.Meta.Title, n.Name),
			Icon:  n.Meta.Icon,
			Path:  full,
			Order: n.Meta.Order,
		}
		if n.Meta.HideChildrenInMenu {
			m.Path = cmp.Or(n.Redirect, full)
		} else if children := generate(n.Children, full); len(children) > 0 {
			m.Children = children
		}
		if n.Meta.Link != "" {
			m.Path = n.Meta.Link
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Node) int {
		return cmp.Compare(sortKey(a.Order), sortKey(b.Order))
	})
	return out
}

func sortKey(order int) int {
	if order == 0 {
		return DefaultOrder
	}
	return order
}
