package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// DefaultMaxRedirects bounds the redirects followed by one navigation.
const DefaultMaxRedirects = 10

// historyLimit bounds the kept history entries.
const historyLimit = 50

// Guard runs before a navigation is confirmed. It may annotate to, allow the
// navigation, redirect it, or fail it by returning an error.
type Guard func(ctx context.Context, to *Location, from Location) (Decision, error)

// AfterHook runs once a navigation settled, successfully or not.
type AfterHook func(to, from Location, err error)

// RouteSource contributes routes computed at runtime. The revision must
// change whenever the tree changes.
type RouteSource interface {
	RouteTree() ([]routes.Node, uint64)
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMaxRedirects sets the redirect limit of a single navigation.
func WithMaxRedirects(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.maxRedirects = n
		}
	}
}

// WithRouteSource adds a source of runtime routes.
func WithRouteSource(src RouteSource) RouterOption {
	return func(r *Router) {
		if src != nil {
			r.sources = append(r.sources, src)
		}
	}
}

// WithRouterLogger sets the router logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// Router resolves navigation targets and runs them through the registered
// guards in registration order. Guards run without any router lock held,
// so they may start nested navigations.
type Router struct {
	maxRedirects int
	sources      []RouteSource
	log          *slog.Logger

	mu      sync.RWMutex
	core    []routes.Node
	guards  []Guard
	after   []AfterHook
	current Location
	history []string

	tableMu sync.Mutex
	table   *routes.Table
	revs    []uint64
}

// NewRouter creates a router over the core routes, the ones that exist for
// every session.
func NewRouter(core []routes.Node, opts ...RouterOption) (*Router, error) {
	r := &Router{
		maxRedirects: DefaultMaxRedirects,
		log:          logger.Discard(),
		core:         routes.Clone(core),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := r.routeTable(); err != nil {
		return nil, err
	}
	return r, nil
}

// BeforeEach registers a guard. Guards run in registration order.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// AfterEach registers a hook run after every settled navigation.
func (r *Router) AfterEach(h AfterHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, h)
}

// AddRoutes extends the core routes.
func (r *Router) AddRoutes(nodes ...routes.Node) error {
	r.mu.Lock()
	r.core = append(r.core, routes.Clone(nodes)...)
	r.mu.Unlock()

	r.tableMu.Lock()
	r.table = nil
	r.tableMu.Unlock()

	_, err := r.routeTable()
	return err
}

// CoreNames lists the names of all core routes.
func (r *Router) CoreNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	routes.Walk(r.core, func(n routes.Node, _ string) bool {
		if n.Name != "" {
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

// routeTable returns the table of core and runtime routes, rebuilding it
// when a source changed.
func (r *Router) routeTable() (*routes.Table, error) {
	trees := make([][]routes.Node, len(r.sources))
	revs := make([]uint64, len(r.sources))
	for i, src := range r.sources {
		trees[i], revs[i] = src.RouteTree()
	}

	r.tableMu.Lock()
	defer r.tableMu.Unlock()
	if r.table != nil && slices.Equal(r.revs, revs) {
		return r.table, nil
	}

	r.mu.RLock()
	core := r.core
	r.mu.RUnlock()

	table := routes.NewTable()
	if err := table.Add(core...); err != nil {
		return nil, err
	}
	for _, tree := range trees {
		if err := table.Add(tree...); err != nil {
			r.log.Error("runtime routes rejected", logger.Error(err))
		}
	}
	r.table, r.revs = table, revs
	return table, nil
}

// Resolve matches target against the known routes without navigating.
func (r *Router) Resolve(target string) (Location, error) {
	path, query, err := ParseTarget(target)
	if err != nil {
		return Location{}, err
	}
	loc := Location{Path: path, Query: query}

	table, err := r.routeTable()
	if err != nil {
		return Location{}, err
	}
	if m, ok := table.Resolve(path); ok {
		loc.Name = m.Name
		loc.Meta = m.Meta
		loc.Params = m.Params
		loc.Matched = true
		// Route-level redirects only apply to the exact route.
		if m.Redirect != "" && m.FullPath == path {
			loc.redirect = m.Redirect
		}
	}
	return loc, nil
}

// Current returns the confirmed location.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// CurrentFullPath returns the confirmed location as a full path.
func (r *Router) CurrentFullPath() string {
	return r.Current().FullPath()
}

// History returns the confirmed full paths, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.history)
}

// Push navigates to target adding a history entry.
func (r *Router) Push(ctx context.Context, target string) error {
	_, err := r.Navigate(ctx, target, false)
	return err
}

// Replace navigates to target replacing the current history entry.
func (r *Router) Replace(ctx context.Context, target string) error {
	_, err := r.Navigate(ctx, target, true)
	return err
}

// Navigate runs target through the guards, following redirects until a
// guard chain allows a location. It fails with ErrRedirectLoop once more
// than the configured number of redirects were followed, and with the
// guard's error when a guard fails. After hooks run in every case.
func (r *Router) Navigate(ctx context.Context, target string, replace bool) (Location, error) {
	r.mu.RLock()
	guards := slices.Clone(r.guards)
	r.mu.RUnlock()

	from := r.Current()
	var to Location
	for hops := 0; ; hops++ {
		if hops > r.maxRedirects {
			err := errors.Join(ErrRedirectLoop, fmt.Errorf("gave up at %s after %d redirects", target, r.maxRedirects))
			r.log.ErrorContext(ctx, "navigation aborted", logger.Path(target), logger.Error(err))
			r.runAfter(to, from, err)
			return Location{}, err
		}
		if err := ctx.Err(); err != nil {
			r.runAfter(to, from, err)
			return Location{}, err
		}

		var err error
		to, err = r.Resolve(target)
		if err != nil {
			r.runAfter(to, from, err)
			return Location{}, err
		}
		if to.redirect != "" {
			target = to.redirect
			continue
		}

		decision, err := r.runGuards(ctx, &to, from, guards)
		if err != nil {
			r.log.WarnContext(ctx, "navigation failed", logger.Path(to.FullPath()), logger.Error(err))
			r.runAfter(to, from, err)
			return Location{}, err
		}
		if decision.IsRedirect() {
			r.log.DebugContext(ctx, "navigation redirected",
				logger.Path(to.FullPath()),
				logger.Redirect(decision.Target()),
			)
			target = decision.Target()
			replace = decision.Replace()
			continue
		}
		break
	}

	r.confirm(to, replace)
	r.runAfter(to, from, nil)
	return to, nil
}

func (r *Router) runGuards(ctx context.Context, to *Location, from Location, guards []Guard) (Decision, error) {
	for _, g := range guards {
		d, err := g(ctx, to, from)
		if err != nil {
			return Decision{}, err
		}
		if d.IsRedirect() {
			return d, nil
		}
	}
	return Allow(), nil
}

func (r *Router) confirm(to Location, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = to
	full := to.FullPath()
	if replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = full
		return
	}
	r.history = append(r.history, full)
	if len(r.history) > historyLimit {
		r.history = slices.Delete(r.history, 0, len(r.history)-historyLimit)
	}
}

func (r *Router) runAfter(to, from Location, err error) {
	r.mu.RLock()
	hooks := slices.Clone(r.after)
	r.mu.RUnlock()
	for _, h := range hooks {
		h(to, from, err)
	}
}
