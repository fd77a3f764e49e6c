package routes

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dmitrymomot/navgate/pkg/logger"
)

// PageSuffix is appended to normalized page paths that lack it.
const PageSuffix = ".vue"

// Registry maps backend component strings to renderable units. Layouts are
// keyed by layout name, Pages by page path; page keys are normalized on use
// so "./views/a/index.vue" and "/a/index.vue" are the same page.
type Registry struct {
	Layouts map[string]Component
	Pages   map[string]Component
}

// PagesOf builds a page table where each page renders itself.
func PagesOf(paths ...string) map[string]Component {
	pages := make(map[string]Component, len(paths))
	for _, p := range paths {
		pages[p] = View(p)
	}
	return pages
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives configuration defects.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

var relativePrefix = regexp.MustCompile(`^(\./|\.\./)+`)

// NormalizeViewPath strips relative prefixes and a leading "/views" segment
// and makes the path absolute.
func NormalizeViewPath(p string) string {
	p = relativePrefix.ReplaceAllString(p, "")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimPrefix(p, "/views")
}

// PageKey is the page table key a backend component string resolves to.
func PageKey(component string) string {
	key := NormalizeViewPath(component)
	if !strings.HasSuffix(key, PageSuffix) {
		key += PageSuffix
	}
	return key
}

// Build resolves backend records into a route tree. A component naming a
// layout binds the layout; any other component is looked up as a page.
// Unresolved pages stay zero and records without a name are kept; both are
// logged and never abort the build. Nesting and order are preserved.
func Build(records []Record, reg Registry, opts ...BuildOption) []Node {
	o := buildOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	pages := make(map[string]Component, len(reg.Pages))
	for k, c := range reg.Pages {
		pages[NormalizeViewPath(k)] = c
	}

	b := builder{layouts: reg.Layouts, pages: pages, log: o.logger}
	return b.build(records, "")
}

type builder struct {
	layouts map[string]Component
	pages   map[string]Component
	log     *slog.Logger
}

func (b builder) build(records []Record, parent string) []Node {
	if records == nil {
		return nil
	}
	out := make([]Node, len(records))
	for i, r := range records {
		full := JoinPath(parent, r.Path)
		if r.Name == "" {
			b.log.LogAttrs(context.Background(), slog.LevelError, "route name is required",
				logger.Path(full))
		}
		out[i] = Node{
			Name:      r.Name,
			Path:      r.Path,
			Redirect:  r.Redirect,
			Component: b.resolve(r, full),
			Meta:      r.Meta.clone(),
			Children:  b.build(r.Children, full),
		}
	}
	return out
}

func (b builder) resolve(r Record, full string) Component {
	if r.Component == "" {
		return Component{}
	}
	if layout, ok := b.layouts[r.Component]; ok {
		return layout
	}
	key := PageKey(r.Component)
	if page, ok := b.pages[key]; ok {
		return page
	}
	b.log.LogAttrs(context.Background(), slog.LevelWarn, "page component not found",
		logger.RouteName(r.Name),
		logger.Path(full),
		logger.Component(key),
	)
	return Component{}
}
