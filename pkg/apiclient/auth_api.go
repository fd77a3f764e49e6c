package apiclient

import (
	"context"

	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/identity"
)

// Endpoint prefixes of the two namespaces.
const (
	PrefixAdmin = "/admin/auth"
	PrefixUser  = "/user/auth"
)

// AuthAPI is the authentication endpoint group under one prefix.
type AuthAPI struct {
	client *Client
	prefix string
}

var _ auth.API = (*AuthAPI)(nil)

// NewAuthAPI returns the endpoints under prefix, PrefixAdmin or PrefixUser.
func NewAuthAPI(client *Client, prefix string) *AuthAPI {
	return &AuthAPI{client: client, prefix: prefix}
}

func (a *AuthAPI) Login(ctx context.Context, creds auth.Credentials) (auth.Token, error) {
	var tok auth.Token
	if err := a.client.Post(ctx, a.prefix+"/login", creds, &tok); err != nil {
		return auth.Token{}, err
	}
	return tok, nil
}

// Logout is sent bare so an expired token cannot trigger re-authentication.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.Post(ctx, a.prefix+"/logout", a.refreshBody(), nil, Bare())
}

func (a *AuthAPI) Profile(ctx context.Context) (*identity.Identity, error) {
	var id identity.Identity
	if err := a.client.Get(ctx, a.prefix+"/profile", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (a *AuthAPI) AccessCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := a.client.Get(ctx, a.prefix+"/access_code", &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// RefreshToken exchanges the refresh token for a new access token.
func (a *AuthAPI) RefreshToken(ctx context.Context) (string, error) {
	var token string
	if err := a.client.Post(ctx, a.prefix+"/refresh_token", a.refreshBody(), &token, Bare()); err != nil {
		return "", err
	}
	return token, nil
}

func (a *AuthAPI) refreshBody() map[string]string {
	body := map[string]string{}
	if a.client.tokens != nil {
		if rt := a.client.tokens.RefreshToken(); rt != "" {
			body["refresh_token"] = rt
		}
	}
	return body
}
