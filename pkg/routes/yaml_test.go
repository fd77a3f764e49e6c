package routes_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

const staticTree = `
- name: Dashboard
  path: /admin/dashboard
  component: layout:BasicLayout
  meta:
    title: Dashboard
    order: -1
  children:
    - name: Workspace
      path: workspace
      component: /dashboard/workspace/index.vue
- name: System
  path: /admin/system
  component: layout:BasicLayout
  meta:
    title: System
    authority: [super]
    menuVisibleWithForbidden: true
`

func TestParseYAML(t *testing.T) {
	tree, err := routes.ParseYAML([]byte(staticTree))
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, routes.Layout("BasicLayout"), tree[0].Component)
	assert.Equal(t, -1, tree[0].Meta.Order)
	assert.Equal(t, routes.Public(), tree[0].Meta.Access)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, routes.View("/dashboard/workspace/index.vue"), tree[0].Children[0].Component)
	assert.Equal(t, routes.VisibleForbidden("super"), tree[1].Meta.Access)
	assert.NoError(t, routes.Validate(tree))
}

func TestParseYAMLErrors(t *testing.T) {
	_, err := routes.ParseYAML([]byte("- name: X\n  unknown: 1\n"))
	assert.True(t, errors.Is(err, routes.ErrParseTree))

	tree, err := routes.ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(staticTree), 0o600))

	tree, err := routes.LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, tree, 2)

	_, err = routes.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, routes.ErrReadTree))
}

func TestValidate(t *testing.T) {
	err := routes.Validate([]routes.Node{
		{Name: "A", Path: "/a", Children: []routes.Node{{Path: "x"}}},
		{Name: "A", Path: "/b"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, routes.ErrMissingName))
	assert.True(t, errors.Is(err, routes.ErrDuplicateName))
}

func TestJoinPathAndFind(t *testing.T) {
	assert.Equal(t, "/admin/users", routes.JoinPath("/admin", "users"))
	assert.Equal(t, "/abs", routes.JoinPath("/admin", "/abs"))
	assert.Equal(t, "/admin", routes.JoinPath("/admin", ""))
	assert.Equal(t, "/x", routes.JoinPath("/", "x"))

	n, ok := routes.Find(sampleTree(), "Rules")
	require.True(t, ok)
	assert.Equal(t, "rules", n.Path)
	_, ok = routes.Find(sampleTree(), "Nope")
	assert.False(t, ok)
}
