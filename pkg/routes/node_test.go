package routes_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

func TestMetaJSON(t *testing.T) {
	t.Run("backend record", func(t *testing.T) {
		payload := `[{
			"name": "Rules",
			"path": "/user/rules",
			"component": "/views/rules/index",
			"meta": {"title": "Rules", "authority": ["admin"], "menuVisibleWithForbidden": true, "order": 5}
		}, {
			"name": "Open",
			"path": "/user/open",
			"meta": {"title": "Open", "menuVisibleWithForbidden": true}
		}, {
			"name": "Closed",
			"path": "/user/closed",
			"meta": {"authority": []}
		}]`

		var records []routes.Record
		require.NoError(t, json.Unmarshal([]byte(payload), &records))
		require.Len(t, records, 3)

		assert.Equal(t, routes.VisibleForbidden("admin"), records[0].Meta.Access)
		assert.Equal(t, 5, records[0].Meta.Order)
		assert.Equal(t, routes.Public(), records[1].Meta.Access, "flag without authority means public")
		assert.Equal(t, routes.Restricted(), records[2].Meta.Access)
		assert.False(t, records[2].Meta.Access.Allows([]string{"admin"}))
	})

	t.Run("restricted wire names", func(t *testing.T) {
		data, err := json.Marshal(routes.Meta{Title: "X", Access: routes.VisibleForbidden("super")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"X","authority":["super"],"menuVisibleWithForbidden":true}`, string(data))

		data, err = json.Marshal(routes.Meta{Access: routes.Restricted()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"authority":[]}`, string(data))

		data, err = json.Marshal(routes.Meta{Title: "P"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"P"}`, string(data))
	})
}

func TestComponentText(t *testing.T) {
	var c routes.Component
	require.NoError(t, c.UnmarshalText([]byte("layout:BasicLayout")))
	assert.Equal(t, routes.Layout("BasicLayout"), c)

	require.NoError(t, c.UnmarshalText([]byte("/dashboard/index.vue")))
	assert.Equal(t, routes.View("/dashboard/index.vue"), c)

	require.NoError(t, c.UnmarshalText(nil))
	assert.True(t, c.IsZero())

	assert.Equal(t, "view:/a.vue", routes.View("/a.vue").String())
}
