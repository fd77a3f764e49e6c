package routes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

var forbiddenView = routes.View("/_core/fallback/forbidden.vue")

func sampleTree() []routes.Node {
	return []routes.Node{
		{Name: "Dashboard", Path: "/admin/dashboard", Component: routes.Layout("BasicLayout"), Children: []routes.Node{
			{Name: "Workspace", Path: "workspace", Component: routes.View("/dashboard/workspace/index.vue")},
			{Name: "Analytics", Path: "analytics", Component: routes.View("/dashboard/analytics/index.vue"),
				Meta: routes.Meta{Access: routes.Restricted("super")}},
		}},
		{Name: "System", Path: "/admin/system", Component: routes.Layout("BasicLayout"),
			Meta: routes.Meta{Access: routes.Restricted("super", "admin")}, Children: []routes.Node{
				{Name: "Admins", Path: "admins", Component: routes.View("/system/admins/index.vue")},
				{Name: "Rules", Path: "rules", Component: routes.View("/system/rules/index.vue"),
					Meta: routes.Meta{Access: routes.VisibleForbidden("super")}},
			}},
		{Name: "Plugins", Path: "/admin/plugins", Component: routes.View("/plugins/index.vue"),
			Meta: routes.Meta{Access: routes.VisibleForbidden("super")}},
		{Name: "Nobody", Path: "/admin/nobody", Component: routes.View("/nobody.vue"),
			Meta: routes.Meta{Access: routes.Restricted()}},
		{Name: "About", Path: "/admin/about", Component: routes.View("/about/index.vue")},
	}
}

func names(nodes []routes.Node) []string {
	var out []string
	routes.Walk(nodes, func(n routes.Node, _ string) bool {
		out = append(out, n.Name)
		return true
	})
	return out
}

func TestFilter(t *testing.T) {
	t.Run("super sees everything granted", func(t *testing.T) {
		out := routes.Filter(sampleTree(), []string{"super"})
		assert.Equal(t, []string{"Dashboard", "Workspace", "Analytics", "System", "Admins", "Rules", "Plugins", "About"}, names(out))
	})

	t.Run("admin keeps visible-when-forbidden nodes", func(t *testing.T) {
		out := routes.Filter(sampleTree(), []string{"admin"})
		assert.Equal(t, []string{"Dashboard", "Workspace", "System", "Admins", "Rules", "Plugins", "About"}, names(out))

		rules, ok := routes.Find(out, "Rules")
		require.True(t, ok)
		assert.Equal(t, routes.View("/system/rules/index.vue"), rules.Component, "no placeholder configured")
	})

	t.Run("forbidden substitution", func(t *testing.T) {
		tree := []routes.Node{{
			Name:      "X",
			Path:      "/x",
			Component: routes.View("/x.vue"),
			Meta:      routes.Meta{Access: routes.VisibleForbidden("admin")},
		}}

		out := routes.Filter(tree, []string{"user"}, routes.WithForbidden(forbiddenView))
		require.Len(t, out, 1)
		assert.Equal(t, forbiddenView, out[0].Component)
		assert.Equal(t, routes.View("/x.vue"), tree[0].Component, "input must not change")
	})

	t.Run("granted flagged node keeps its component", func(t *testing.T) {
		out := routes.Filter(sampleTree(), []string{"super"}, routes.WithForbidden(forbiddenView))
		rules, ok := routes.Find(out, "Rules")
		require.True(t, ok)
		assert.Equal(t, routes.View("/system/rules/index.vue"), rules.Component)
	})

	t.Run("plain denial removes the node", func(t *testing.T) {
		tree := []routes.Node{{Name: "X", Path: "/x", Meta: routes.Meta{Access: routes.Restricted("admin")}}}
		assert.Empty(t, routes.Filter(tree, []string{"user"}))
	})

	t.Run("denied parent removes its subtree", func(t *testing.T) {
		out := routes.Filter(sampleTree(), []string{"user"})
		assert.Equal(t, []string{"Dashboard", "Workspace", "Plugins", "About"}, names(out))
	})

	t.Run("empty authority grants nobody", func(t *testing.T) {
		out := routes.Filter(sampleTree(), []string{"super", "admin", ""})
		_, ok := routes.Find(out, "Nobody")
		assert.False(t, ok)
	})

	t.Run("grouping parent without surviving children is kept", func(t *testing.T) {
		tree := []routes.Node{{Name: "Group", Path: "/g", Children: []routes.Node{
			{Name: "Secret", Path: "s", Meta: routes.Meta{Access: routes.Restricted("admin")}},
		}}}

		out := routes.Filter(tree, nil)
		require.Len(t, out, 1)
		assert.Equal(t, "Group", out[0].Name)
		assert.Empty(t, out[0].Children)
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, roles := range [][]string{nil, {"user"}, {"admin"}, {"super"}, {"admin", "super"}} {
			once := routes.Filter(sampleTree(), roles, routes.WithForbidden(forbiddenView))
			twice := routes.Filter(once, roles, routes.WithForbidden(forbiddenView))
			assert.Equal(t, once, twice, "roles %v", roles)
		}
	})

	t.Run("order preserved", func(t *testing.T) {
		tree := []routes.Node{
			{Name: "A", Path: "/a"},
			{Name: "B", Path: "/b", Meta: routes.Meta{Access: routes.Restricted("x")}},
			{Name: "C", Path: "/c"},
			{Name: "D", Path: "/d", Meta: routes.Meta{Access: routes.Restricted("y")}},
			{Name: "E", Path: "/e"},
		}
		assert.Equal(t, []string{"A", "C", "D", "E"}, names(routes.Filter(tree, []string{"y"})))
		assert.Equal(t, []string{"A", "B", "C", "E"}, names(routes.Filter(tree, []string{"x"})))
	})

	t.Run("output does not alias input", func(t *testing.T) {
		tree := sampleTree()
		out := routes.Filter(tree, []string{"super"})
		out[1].Meta.Access.Authority[0] = "changed"
		assert.Equal(t, "super", tree[1].Meta.Access.Authority[0])
	})
}

func TestHasAuthority(t *testing.T) {
	public := routes.Node{Name: "P"}
	restricted := routes.Node{Name: "R", Meta: routes.Meta{Access: routes.Restricted("admin", "super")}}

	assert.True(t, routes.HasAuthority(public, nil))
	assert.True(t, routes.HasAuthority(restricted, []string{"guest", "super"}))
	assert.False(t, routes.HasAuthority(restricted, []string{"guest"}))
	assert.False(t, routes.HasAuthority(restricted, nil))
}

func TestVisibleWhenForbidden(t *testing.T) {
	assert.True(t, routes.VisibleWhenForbidden(routes.Node{Meta: routes.Meta{Access: routes.VisibleForbidden("a")}}))
	assert.False(t, routes.VisibleWhenForbidden(routes.Node{Meta: routes.Meta{Access: routes.Restricted("a")}}))

	public := routes.Node{Meta: routes.Meta{Access: routes.Access{Kind: routes.AccessPublic, VisibleWhenForbidden: true}}}
	assert.False(t, routes.VisibleWhenForbidden(public))
}
