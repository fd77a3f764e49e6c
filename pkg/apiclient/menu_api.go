package apiclient

import (
	"context"

	"github.com/dmitrymomot/navgate/pkg/guard"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// MenuAPI serves the backend-defined route tree under one prefix.
type MenuAPI struct {
	client *Client
	prefix string
}

var _ guard.MenuAPI = (*MenuAPI)(nil)

// NewMenuAPI returns the route endpoint under prefix.
func NewMenuAPI(client *Client, prefix string) *MenuAPI {
	return &MenuAPI{client: client, prefix: prefix}
}

// AllRoutes fetches the route records the signed-in user may see.
func (m *MenuAPI) AllRoutes(ctx context.Context) ([]routes.Record, error) {
	var records []routes.Record
	if err := m.client.Get(ctx, m.prefix+"/all_router", &records); err != nil {
		return nil, err
	}
	return records, nil
}
