package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Namespace records the access namespace ("admin", "user") under "namespace".
func Namespace(ns string) slog.Attr {
	return slog.String("namespace", ns)
}

// Path records a navigation path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Redirect records a redirect target under the key "redirect".
func Redirect(target string) slog.Attr {
	return slog.String("redirect", target)
}

// RouteName records a route name under the key "route".
func RouteName(name string) slog.Attr {
	return slog.String("route", name)
}

// Component records a component reference under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// WorkspaceID records the workspace identifier under the key "workspace_id".
// If id is nil, it returns an empty Attr.
func WorkspaceID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("workspace_id", id)
}

// UserID records the identity id under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
