package routes

import (
	"encoding/json"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ComponentKind tells what a route renders.
type ComponentKind uint8

const (
	// ComponentNone marks an unresolved component: nothing is rendered.
	ComponentNone ComponentKind = iota
	// ComponentView is a page.
	ComponentView
	// ComponentLayout wraps child routes.
	ComponentLayout
)

// Component is a reference to a renderable unit. The zero value is the
// unresolved placeholder.
type Component struct {
	Kind ComponentKind
	Name string
}

// View references a page component.
func View(name string) Component { return Component{Kind: ComponentView, Name: name} }

// Layout references a layout component.
func Layout(name string) Component { return Component{Kind: ComponentLayout, Name: name} }

// IsZero reports whether the component is unresolved.
func (c Component) IsZero() bool { return c.Kind == ComponentNone }

// String renders the component as "kind:name".
func (c Component) String() string {
	switch c.Kind {
	case ComponentView:
		return "view:" + c.Name
	case ComponentLayout:
		return "layout:" + c.Name
	default:
		return ""
	}
}

func (c Component) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "layout:Name", "view:Name", a bare name (a view) or
// an empty string (unresolved).
func (c *Component) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch {
	case s == "":
		*c = Component{}
	case strings.HasPrefix(s, "layout:"):
		*c = Layout(strings.TrimPrefix(s, "layout:"))
	case strings.HasPrefix(s, "view:"):
		*c = View(strings.TrimPrefix(s, "view:"))
	default:
		*c = View(s)
	}
	return nil
}

// AccessKind discriminates Access.
type AccessKind uint8

const (
	// AccessPublic routes are visible to everyone.
	AccessPublic AccessKind = iota
	// AccessRestricted routes require one of Authority.
	AccessRestricted
)

// Access is the permission policy of a route: either public, or restricted
// to a set of roles, optionally staying visible in menus when forbidden.
type Access struct {
	Kind                 AccessKind
	Authority            []string
	VisibleWhenForbidden bool
}

// Public returns the public policy.
func Public() Access { return Access{Kind: AccessPublic} }

// Restricted returns a policy granting access to any of authority. An empty
// authority list grants nobody.
func Restricted(authority ...string) Access {
	if authority == nil {
		authority = []string{}
	}
	return Access{Kind: AccessRestricted, Authority: authority}
}

// VisibleForbidden returns a restricted policy that keeps the route in menus
// for callers without access.
func VisibleForbidden(authority ...string) Access {
	a := Restricted(authority...)
	a.VisibleWhenForbidden = true
	return a
}

// IsRestricted reports whether the policy requires authority.
func (a Access) IsRestricted() bool { return a.Kind == AccessRestricted }

// Allows reports whether any of roles is listed in the authority. Public
// policies allow everyone.
func (a Access) Allows(roles []string) bool {
	if !a.IsRestricted() {
		return true
	}
	for _, r := range roles {
		if slices.Contains(a.Authority, r) {
			return true
		}
	}
	return false
}

// Meta carries route metadata.
type Meta struct {
	Title              string
	Icon               string
	Order              int
	HideInMenu         bool
	HideChildrenInMenu bool
	HideInBreadcrumb   bool
	HideInTab          bool
	IgnoreAccess       bool
	Link               string
	Access             Access
}

// metaWire is the JSON/YAML shape of Meta, using the names the backend
// menu API and the static route files use.
type metaWire struct {
	Title                    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Icon                     string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Order                    int       `json:"order,omitempty" yaml:"order,omitempty"`
	HideInMenu               bool      `json:"hideInMenu,omitempty" yaml:"hideInMenu,omitempty"`
	HideChildrenInMenu       bool      `json:"hideChildrenInMenu,omitempty" yaml:"hideChildrenInMenu,omitempty"`
	HideInBreadcrumb         bool      `json:"hideInBreadcrumb,omitempty" yaml:"hideInBreadcrumb,omitempty"`
	HideInTab                bool      `json:"hideInTab,omitempty" yaml:"hideInTab,omitempty"`
	IgnoreAccess             bool      `json:"ignoreAccess,omitempty" yaml:"ignoreAccess,omitempty"`
	Link                     string    `json:"link,omitempty" yaml:"link,omitempty"`
	Authority                *[]string `json:"authority,omitempty" yaml:"authority,omitempty"`
	MenuVisibleWithForbidden bool      `json:"menuVisibleWithForbidden,omitempty" yaml:"menuVisibleWithForbidden,omitempty"`
}

func (m Meta) wire() metaWire {
	w := metaWire{
		Title:              m.Title,
		Icon:               m.Icon,
		Order:              m.Order,
		HideInMenu:         m.HideInMenu,
		HideChildrenInMenu: m.HideChildrenInMenu,
		HideInBreadcrumb:   m.HideInBreadcrumb,
		HideInTab:          m.HideInTab,
		IgnoreAccess:       m.IgnoreAccess,
		Link:               m.Link,
	}
	if m.Access.IsRestricted() {
		authority := slices.Clone(m.Access.Authority)
		if authority == nil {
			authority = []string{}
		}
		w.Authority = &authority
		w.MenuVisibleWithForbidden = m.Access.VisibleWhenForbidden
	}
	return w
}

// menuVisibleWithForbidden only means something next to an authority list.
func (w metaWire) meta() Meta {
	m := Meta{
		Title:              w.Title,
		Icon:               w.Icon,
		Order:              w.Order,
		HideInMenu:         w.HideInMenu,
		HideChildrenInMenu: w.HideChildrenInMenu,
		HideInBreadcrumb:   w.HideInBreadcrumb,
		HideInTab:          w.HideInTab,
		IgnoreAccess:       w.IgnoreAccess,
		Link:               w.Link,
		Access:             Public(),
	}
	if w.Authority != nil {
		m.Access = Restricted(*w.Authority...)
		m.Access.VisibleWhenForbidden = w.MenuVisibleWithForbidden
	}
	return m
}

func (m Meta) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var w metaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = w.meta()
	return nil
}

func (m Meta) MarshalYAML() (any, error) {
	return m.wire(), nil
}

func (m *Meta) UnmarshalYAML(value *yaml.Node) error {
	var w metaWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*m = w.meta()
	return nil
}

func (m Meta) clone() Meta {
	m.Access.Authority = slices.Clone(m.Access.Authority)
	return m
}

// Node is one route of a route tree. Name must be unique across the tree.
type Node struct {
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path"`
	Redirect  string    `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Component Component `json:"component" yaml:"component,omitempty"`
	Meta      Meta      `json:"meta" yaml:"meta,omitempty"`
	Children  []Node    `json:"children,omitempty" yaml:"children,omitempty"`
}

// Record is a route as delivered by the backend menu API: the component is
// still a string naming a layout or a page file.
type Record struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Redirect  string   `json:"redirect,omitempty"`
	Component string   `json:"component,omitempty"`
	Meta      Meta     `json:"meta"`
	Children  []Record `json:"children,omitempty"`
}
