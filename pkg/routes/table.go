package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Entry is a flattened route: one node with its full path resolved.
type Entry struct {
	Name     string
	FullPath string
	Redirect string
	Meta     Meta
	// pattern is the chi pattern the entry is registered under; wildcard
	// is the vue name of a trailing catch-all parameter.
	pattern  string
	wildcard string
}

// Match is the result of resolving a concrete path.
type Match struct {
	Entry
	Params map[string]string
}

// Table resolves concrete paths to registered routes. Vue-style patterns
// are accepted: ":id" parameters and a trailing ":path(.*)*" catch-all.
// It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	mux     *chi.Mux
	byPat   map[string]Entry
	byName  map[string]Entry
	noopH   http.HandlerFunc
	entries int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		mux:    chi.NewMux(),
		byPat:  make(map[string]Entry),
		byName: make(map[string]Entry),
		noopH:  func(http.ResponseWriter, *http.Request) {},
	}
}

// Add registers every node of the tree. Nodes whose path is an external
// link are skipped. A node re-using a registered path replaces it.
func (t *Table) Add(nodes ...Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	Walk(nodes, func(n Node, full string) bool {
		if isExternal(n.Path) {
			return false
		}
		if err := t.add(n, full); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

func (t *Table) add(n Node, full string) (err error) {
	pattern, wildcard, err := chiPattern(full)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrInvalidPath, fmt.Errorf("%s: %v", full, r))
		}
	}()
	t.mux.Get(pattern, t.noopH)

	e := Entry{
		Name:     n.Name,
		FullPath: full,
		Redirect: n.Redirect,
		Meta:     n.Meta.clone(),
		pattern:  pattern,
		wildcard: wildcard,
	}
	if old, ok := t.byPat[pattern]; ok && old.Name != "" && old.Name != n.Name {
		delete(t.byName, old.Name)
	} else if !ok {
		t.entries++
	}
	t.byPat[pattern] = e
	if n.Name != "" {
		t.byName[n.Name] = e
	}
	return nil
}

// Resolve matches a concrete path (without query) against the table.
func (t *Table) Resolve(path string) (Match, bool) {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	rctx := chi.NewRouteContext()
	pattern := t.mux.Find(rctx, http.MethodGet, path)
	if pattern == "" {
		return Match{}, false
	}
	e, ok := t.byPat[pattern]
	if !ok {
		return Match{}, false
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			k = e.wildcard
		}
		params[k] = rctx.URLParams.Values[i]
	}
	return Match{Entry: e, Params: params}, true
}

// Lookup returns the entry registered under name.
func (t *Table) Lookup(name string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byName[name]
	return e, ok
}

// HasName reports whether a route named name is registered.
func (t *Table) HasName(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Len returns the number of registered paths.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// chiPattern converts a vue route path into a chi pattern. It returns the
// name of the catch-all parameter, if any.
func chiPattern(full string) (string, string, error) {
	if full == "" || full == "/" {
		return "/", "", nil
	}
	if !strings.HasPrefix(full, "/") {
		return "", "", errors.Join(ErrInvalidPath, fmt.Errorf("%q is not absolute", full))
	}

	segs := strings.Split(strings.Trim(full, "/"), "/")
	wildcard := ""
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		name := s[1:]
		if idx := strings.IndexByte(name, '('); idx >= 0 {
			if i != len(segs)-1 {
				return "", "", errors.Join(ErrInvalidPath, fmt.Errorf("%q: catch-all must be last", full))
			}
			wildcard = name[:idx]
			segs[i] = "*"
			continue
		}
		name = strings.TrimRight(name, "?*+")
		if name == "" {
			return "", "", errors.Join(ErrInvalidPath, fmt.Errorf("%q: empty parameter", full))
		}
		segs[i] = "{" + name + "}"
	}
	return "/" + strings.Join(segs, "/"), wildcard, nil
}
