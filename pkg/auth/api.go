package auth

import (
	"context"

	"github.com/dmitrymomot/navgate/pkg/identity"
)

// Credentials is the login form.
type Credentials struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CaptchaType string `json:"captcha_type,omitempty"`
	CaptchaID   string `json:"captcha_id,omitempty"`
	CaptchaCode string `json:"captcha_code,omitempty"`
}

// Token is what a successful login returns.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// API is the remote authentication service of one namespace.
type API interface {
	Login(ctx context.Context, creds Credentials) (Token, error)
	// Logout is best-effort; callers ignore its error.
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*identity.Identity, error)
	AccessCodes(ctx context.Context) ([]string, error)
	RefreshToken(ctx context.Context) (string, error)
}

// Navigator moves the client to a new location. Targets are full paths,
// query included.
type Navigator interface {
	Push(ctx context.Context, target string) error
	Replace(ctx context.Context, target string) error
	CurrentFullPath() string
}
