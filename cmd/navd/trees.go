package main

import (
	"bytes"
	"embed"
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

//go:embed routes/*.yaml
var defaults embed.FS

var errReadPages = errors.New("navd.read_pages")

// filesConfig points at route tree files. Empty paths use the built-in
// trees.
type filesConfig struct {
	CoreRoutes  string `env:"NAVD_CORE_ROUTES"`
	AdminRoutes string `env:"NAVD_ADMIN_ROUTES"`
	Pages       string `env:"NAVD_PAGES"`
}

type trees struct {
	core      []routes.Node
	admin     []routes.Node
	registry  routes.Registry
	forbidden routes.Component
}

// pagesFile lists what backend component strings may resolve to.
type pagesFile struct {
	Layouts   map[string]routes.Component `yaml:"layouts"`
	Pages     []string                    `yaml:"pages"`
	Forbidden routes.Component            `yaml:"forbidden"`
}

func loadTrees(cfg filesConfig) (trees, error) {
	var t trees
	var err error
	if t.core, err = loadTree(cfg.CoreRoutes, "routes/core.yaml"); err != nil {
		return t, err
	}
	if t.admin, err = loadTree(cfg.AdminRoutes, "routes/admin.yaml"); err != nil {
		return t, err
	}
	if err := routes.Validate(append(routes.Clone(t.core), t.admin...)); err != nil {
		return t, err
	}

	data, err := readFile(cfg.Pages, "routes/pages.yaml")
	if err != nil {
		return t, errors.Join(errReadPages, err)
	}
	var pf pagesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return t, errors.Join(errReadPages, err)
	}
	t.registry = routes.Registry{Layouts: pf.Layouts, Pages: routes.PagesOf(pf.Pages...)}
	t.forbidden = pf.Forbidden
	return t, nil
}

func loadTree(path, fallback string) ([]routes.Node, error) {
	if path != "" {
		return routes.LoadYAML(path)
	}
	data, err := defaults.ReadFile(fallback)
	if err != nil {
		return nil, err
	}
	return routes.ParseYAML(data)
}

func readFile(path, fallback string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return defaults.ReadFile(fallback)
}
