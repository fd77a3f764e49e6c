package access

import "time"

const (
	NamespaceAdmin = "admin"
	NamespaceUser  = "user"
)

// Config holds the login expiry windows of both namespaces.
type Config struct {
	AdminExpiry time.Duration `env:"ADMIN_LOGIN_EXPIRY" envDefault:"2h"`
	UserExpiry  time.Duration `env:"USER_LOGIN_EXPIRY" envDefault:"72h"`
}

// Window returns the expiry window configured for namespace. Unknown
// namespaces get the admin window.
func (c Config) Window(namespace string) time.Duration {
	if namespace == NamespaceUser {
		return c.UserExpiry
	}
	return c.AdminExpiry
}
