package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/navgate"
	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/apiclient"
	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/guard"
	"github.com/dmitrymomot/navgate/pkg/logger"
)

// envelope mirrors the backend's response shape: code 0 is success.
type envelope struct {
	Code int    `json:"code"`
	Data any    `json:"data,omitempty"`
	Msg  string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Code: 0, Data: data, Msg: "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		logger.Path(r.URL.Path),
		slog.Int("status", status),
		logger.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Code: status, Msg: msg})
}

// classify maps an error to a status and a client-facing message.
func classify(err error) (int, string) {
	var apiErr *apiclient.Error
	switch {
	case errors.Is(err, ErrWorkspaceNotFound):
		return http.StatusNotFound, "workspace not found"
	case errors.Is(err, ErrUnknownNamespace):
		return http.StatusNotFound, "unknown namespace"
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, guard.ErrInvalidTarget):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, access.ErrStaleSession):
		return http.StatusConflict, "session changed during the request"
	case errors.Is(err, guard.ErrRedirectLoop):
		return http.StatusLoopDetected, "navigation redirected too many times"
	case errors.Is(err, apiclient.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			return http.StatusBadGateway, apiErr.Msg
		}
		return http.StatusUnprocessableEntity, apiErr.Msg
	case errors.Is(err, apiclient.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "backend unavailable"
	case errors.Is(err, apiclient.ErrTransport), errors.Is(err, auth.ErrLoadProfile):
		return http.StatusBadGateway, "backend request failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timed out"
	case errors.Is(err, navgate.ErrAssemble):
		return http.StatusInternalServerError, "workspace unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

type locationResponse struct {
	guard.Location
	FullPath string `json:"full_path"`
}

func location(loc guard.Location) locationResponse {
	return locationResponse{Location: loc, FullPath: loc.FullPath()}
}
