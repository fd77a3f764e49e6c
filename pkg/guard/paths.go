package guard

import "strings"

// Paths are the well-known locations the guards redirect to.
type Paths struct {
	Root       string `env:"ROOT_PATH" envDefault:"/"`
	Install    string `env:"INSTALL_PATH" envDefault:"/install/init"`
	AdminLogin string `env:"ADMIN_LOGIN_PATH" envDefault:"/admin/login"`
	AdminHome  string `env:"DEFAULT_ADMIN_PATH" envDefault:"/admin/dashboard/workspace"`
	UserLogin  string `env:"USER_LOGIN_PATH" envDefault:"/user/login"`
	UserHome   string `env:"DEFAULT_USER_PATH" envDefault:"/user/home"`
	UserPrefix string `env:"USER_PATH_PREFIX" envDefault:"/user"`
}

// DefaultPaths returns the paths used when nothing is configured.
func DefaultPaths() Paths {
	return Paths{
		Root:       "/",
		Install:    "/install/init",
		AdminLogin: "/admin/login",
		AdminHome:  "/admin/dashboard/workspace",
		UserLogin:  "/user/login",
		UserHome:   "/user/home",
		UserPrefix: "/user",
	}
}

// IsUserPath reports whether p belongs to the user shell.
func (p Paths) IsUserPath(path string) bool {
	return path == p.UserPrefix || strings.HasPrefix(path, strings.TrimSuffix(p.UserPrefix, "/")+"/")
}
