package routes

import (
	"errors"
	"fmt"
	"strings"
)

// JoinPath resolves child against parent the way nested routes do: absolute
// children stay as they are, relative ones are appended to the parent.
func JoinPath(parent, child string) string {
	switch {
	case strings.HasPrefix(child, "/"):
		return child
	case child == "":
		if parent == "" {
			return "/"
		}
		return parent
	case parent == "" || parent == "/":
		return "/" + child
	default:
		return strings.TrimSuffix(parent, "/") + "/" + child
	}
}

// Walk visits every node depth-first, parents before children, passing the
// node's full path. Returning false from fn skips the node's children.
func Walk(nodes []Node, fn func(n Node, fullPath string) bool) {
	walk(nodes, "", fn)
}

func walk(nodes []Node, parent string, fn func(Node, string) bool) {
	for _, n := range nodes {
		full := JoinPath(parent, n.Path)
		if fn(n, full) {
			walk(n.Children, full, fn)
		}
	}
}

// Find returns the first node named name.
func Find(nodes []Node, name string) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(nodes, func(n Node, _ string) bool {
		if ok {
			return false
		}
		if n.Name == name {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// Clone deep-copies a route tree.
func Clone(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Meta = n.Meta.clone()
		out[i].Children = Clone(n.Children)
	}
	return out
}

// Validate reports nodes without a name and names used more than once.
func Validate(nodes []Node) error {
	var errs []error
	seen := make(map[string]struct{})
	Walk(nodes, func(n Node, full string) bool {
		if n.Name == "" {
			errs = append(errs, errors.Join(ErrMissingName, fmt.Errorf("path %q", full)))
			return true
		}
		if _, dup := seen[n.Name]; dup {
			errs = append(errs, errors.Join(ErrDuplicateName, fmt.Errorf("name %q", n.Name)))
		}
		seen[n.Name] = struct{}{}
		return true
	})
	return errors.Join(errs...)
}
