package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/navgate"
	"github.com/dmitrymomot/navgate/pkg/httpserver"
	"github.com/dmitrymomot/navgate/pkg/logger"
)

// Server exposes workspaces over HTTP.
type Server struct {
	registry *Registry
	cfg      Config
	metrics  *Metrics
	gatherer prometheus.Gatherer
	checks   map[string]httpserver.Check
	log      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets timeouts.
func WithConfig(cfg Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithMetrics records gateway metrics into m and serves g on /metrics.
func WithMetrics(m *Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithReadinessCheck adds a dependency probed by /readyz.
func WithReadinessCheck(name string, check httpserver.Check) Option {
	return func(s *Server) {
		if check != nil {
			s.checks[name] = check
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a server over registry.
func New(registry *Registry, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		cfg: Config{
			RequestTimeout: 30 * time.Second,
			ReadyTimeout:   3 * time.Second,
		},
		checks: make(map[string]httpserver.Check),
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(s.log, s.cfg.ReadyTimeout, s.checks))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/workspaces", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		r.Post("/", s.createWorkspace)
		r.Route("/{workspaceID}", func(r chi.Router) {
			r.Use(s.withWorkspace)
			r.Delete("/", s.deleteWorkspace)
			r.Get("/location", s.currentLocation)
			r.Post("/navigate", s.navigate)
			r.Route("/{namespace}", func(r chi.Router) {
				r.Use(s.withNamespace)
				r.Post("/login", s.login)
				r.Post("/logout", s.logout)
				r.Get("/menus", s.menus)
				r.Get("/session", s.session)
			})
		})
	})
	return r
}

// RequestIDExtractor adds the chi request id to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := middleware.GetReqID(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.DebugContext(r.Context(), "http request",
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(start)),
		)
	})
}

type ctxKey int

const (
	workspaceKey ctxKey = iota
	namespaceKey
)

func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.registry.Get(r.Context(), chi.URLParam(r, "workspaceID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey, ws)))
	})
}

func (s *Server) withNamespace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ns, ok := workspaceFrom(r).Namespace(chi.URLParam(r, "namespace"))
		if !ok {
			s.writeError(w, r, ErrUnknownNamespace)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), namespaceKey, ns)))
	})
}

func workspaceFrom(r *http.Request) *navgate.Workspace {
	ws, _ := r.Context().Value(workspaceKey).(*navgate.Workspace)
	return ws
}

func namespaceFrom(r *http.Request) *navgate.Namespace {
	ns, _ := r.Context().Value(namespaceKey).(*navgate.Namespace)
	return ns
}
