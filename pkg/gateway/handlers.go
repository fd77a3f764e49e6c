package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/identity"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/menu"
)

type workspaceResponse struct {
	ID       string           `json:"id"`
	Location locationResponse `json:"location"`
}

func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.registry.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "workspace created", logger.WorkspaceID(ws.ID()))
	writeJSON(w, http.StatusCreated, workspaceResponse{
		ID:       ws.ID(),
		Location: location(ws.Router().Current()),
	})
}

// deleteWorkspace signs both namespaces out and forgets the workspace.
func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	for _, ns := range []*auth.Service{ws.Admin().Auth, ws.User().Auth} {
		if ns.Access().AccessToken() != "" {
			ns.Terminate(r.Context())
		}
	}
	s.registry.Delete(ws.ID())
	w.WriteHeader(http.StatusNoContent)
}

type historyResponse struct {
	Location locationResponse `json:"location"`
	History  []string         `json:"history"`
}

func (s *Server) currentLocation(w http.ResponseWriter, r *http.Request) {
	router := workspaceFrom(r).Router()
	writeJSON(w, http.StatusOK, historyResponse{
		Location: location(router.Current()),
		History:  router.History(),
	})
}

type navigateRequest struct {
	Target  string `json:"target"`
	Replace bool   `json:"replace"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Target == "" {
		s.writeError(w, r, errors.Join(ErrInvalidRequest, errors.New("target is required")))
		return
	}

	start := time.Now()
	loc, err := workspaceFrom(r).Navigate(r.Context(), req.Target, req.Replace)
	if s.metrics != nil {
		s.metrics.NavigationDuration.Observe(time.Since(start).Seconds())
		s.metrics.Navigations.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, location(loc))
}

type loginRequest struct {
	auth.Credentials
	// Redirect replaces the namespace's default landing path.
	Redirect string `json:"redirect,omitempty"`
}

type loginResponse struct {
	Identity *identity.Identity `json:"identity"`
	Location locationResponse   `json:"location"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ws, ns := workspaceFrom(r), namespaceFrom(r)
	var onSuccess func(ctx context.Context) error
	if req.Redirect != "" {
		onSuccess = func(ctx context.Context) error {
			return ws.Router().Push(ctx, req.Redirect)
		}
	}

	id, err := ns.Auth.Login(r.Context(), req.Credentials, onSuccess)
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(ns.Access.Namespace(), outcome(err)).Inc()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Identity: id, Location: location(ws.Router().Current())})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	redirect := true
	if v := r.URL.Query().Get("redirect"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.Join(ErrInvalidRequest, err))
			return
		}
		redirect = b
	}

	ws, ns := workspaceFrom(r), namespaceFrom(r)
	err := ns.Auth.Logout(r.Context(), redirect)
	if s.metrics != nil {
		s.metrics.Logouts.WithLabelValues(ns.Access.Namespace()).Inc()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, location(ws.Router().Current()))
}

func (s *Server) menus(w http.ResponseWriter, r *http.Request) {
	menus := namespaceFrom(r).Access.Menus()
	if menus == nil {
		menus = []menu.Node{}
	}
	writeJSON(w, http.StatusOK, menus)
}

type sessionResponse struct {
	Namespace     string             `json:"namespace"`
	Authenticated bool               `json:"authenticated"`
	Expired       bool               `json:"expired"`
	AccessChecked bool               `json:"access_checked"`
	AccessCodes   []string           `json:"access_codes"`
	LoginTime     *time.Time         `json:"login_time,omitempty"`
	Identity      *identity.Identity `json:"identity,omitempty"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	ns := namespaceFrom(r)
	acc := ns.Access
	res := sessionResponse{
		Namespace:     acc.Namespace(),
		Authenticated: acc.AccessToken() != "",
		Expired:       acc.LoginExpired(),
		AccessChecked: acc.IsAccessChecked(),
		AccessCodes:   acc.AccessCodes(),
		Identity:      ns.Identities.Get(),
	}
	if res.AccessCodes == nil {
		res.AccessCodes = []string{}
	}
	if t, ok := acc.LoginTime(); ok {
		res.LoginTime = &t
	}
	writeJSON(w, http.StatusOK, res)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}
