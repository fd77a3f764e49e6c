package apiclient

import (
	"context"

	"github.com/dmitrymomot/navgate/pkg/guard"
)

// InstallAPI reports the installation state of the backend.
type InstallAPI struct {
	client *Client
}

var _ guard.InstallAPI = (*InstallAPI)(nil)

func NewInstallAPI(client *Client) *InstallAPI {
	return &InstallAPI{client: client}
}

func (i *InstallAPI) CheckInstalled(ctx context.Context) (bool, error) {
	var res struct {
		Installed bool `json:"installed"`
	}
	if err := i.client.Post(ctx, "/install_check", nil, &res); err != nil {
		return false, err
	}
	return res.Installed, nil
}
