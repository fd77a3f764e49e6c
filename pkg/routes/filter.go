package routes

// FilterOption configures Filter.
type FilterOption func(*filterOptions)

type filterOptions struct {
	forbidden    Component
	hasForbidden bool
}

// WithForbidden sets the component rendered instead of a route that stays in
// the tree only because it is visible when forbidden.
func WithForbidden(c Component) FilterOption {
	return func(o *filterOptions) {
		o.forbidden = c
		o.hasForbidden = true
	}
}

// HasAuthority reports whether roles grant access to n.
func HasAuthority(n Node, roles []string) bool {
	return n.Meta.Access.Allows(roles)
}

// VisibleWhenForbidden reports whether n stays in menus for callers without
// access. Only restricted routes can be flagged.
func VisibleWhenForbidden(n Node) bool {
	return n.Meta.Access.IsRestricted() && n.Meta.Access.VisibleWhenForbidden
}

// Filter returns the subset of tree visible to roles. The input is never
// modified. A node survives when it is public, when roles intersect its
// authority, or when it is visible when forbidden; in the last case the
// forbidden component, if configured, replaces its own. Parents are kept
// even when none of their children survive. Sibling order is preserved and
// filtering an already filtered tree with the same roles is a no-op.
func Filter(tree []Node, roles []string, opts ...FilterOption) []Node {
	var o filterOptions
	for _, opt := range opts {
		opt(&o)
	}
	return filterNodes(tree, roles, o)
}

func filterNodes(nodes []Node, roles []string, o filterOptions) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		granted := HasAuthority(n, roles)
		if !granted && !VisibleWhenForbidden(n) {
			continue
		}

		kept := n
		kept.Meta = n.Meta.clone()
		kept.Children = filterNodes(n.Children, roles, o)
		if !granted && o.hasForbidden {
			kept.Component = o.forbidden
		}
		out = append(out, kept)
	}
	return out
}
