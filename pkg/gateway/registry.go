package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dmitrymomot/navgate"
	"github.com/dmitrymomot/navgate/pkg/logger"
)

// Factory assembles the workspace with the given id.
type Factory func(ctx context.Context, id string) (*navgate.Workspace, error)

// NewFactory returns a Factory over deps that reports page loads and login
// expirations to m. m may be nil.
func NewFactory(deps navgate.Deps, m *Metrics) Factory {
	return func(ctx context.Context, id string) (*navgate.Workspace, error) {
		d := deps
		if m != nil {
			d.Progress = m.Progress()
			onExpired := deps.OnExpired
			d.OnExpired = func(workspaceID, namespace string) {
				m.Expirations.WithLabelValues(namespace).Inc()
				if onExpired != nil {
					onExpired(workspaceID, namespace)
				}
			}
		}
		return navgate.NewWorkspace(ctx, id, d)
	}
}

// Registry holds the most recently used workspaces. Evicted workspaces are
// closed; their sessions stay in durable storage, so a later lookup of the
// same id assembles the workspace again.
type Registry struct {
	cache   *lru.Cache[string, *navgate.Workspace]
	create  Factory
	metrics *Metrics
	log     *slog.Logger
}

// NewRegistry creates a registry holding up to size workspaces.
func NewRegistry(size int, create Factory, m *Metrics, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = logger.Discard()
	}
	r := &Registry{create: create, metrics: m, log: log}
	cache, err := lru.NewWithEvict(size, r.evicted)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

// Create assembles a workspace under a fresh id.
func (r *Registry) Create(ctx context.Context) (*navgate.Workspace, error) {
	ws, err := r.create(ctx, uuid.NewString())
	if err != nil {
		return nil, err
	}
	r.add(ws)
	return ws, nil
}

// Get returns the workspace with id, assembling it from durable storage
// when it is not in memory.
func (r *Registry) Get(ctx context.Context, id string) (*navgate.Workspace, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Join(ErrWorkspaceNotFound, err)
	}
	if ws, ok := r.cache.Get(id); ok {
		return ws, nil
	}

	ws, err := r.create(ctx, id)
	if err != nil {
		return nil, err
	}
	previous, found, _ := r.cache.PeekOrAdd(id, ws)
	if found {
		// Lost a race with a concurrent lookup.
		ws.Close()
		return previous, nil
	}
	r.gaugeAdd(1)
	r.log.DebugContext(ctx, "workspace restored", logger.WorkspaceID(id))
	return ws, nil
}

// Delete closes and forgets the workspace. It reports whether it was held.
func (r *Registry) Delete(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of workspaces in memory.
func (r *Registry) Len() int { return r.cache.Len() }

// Close closes all workspaces.
func (r *Registry) Close() { r.cache.Purge() }

func (r *Registry) add(ws *navgate.Workspace) {
	r.cache.Add(ws.ID(), ws)
	r.gaugeAdd(1)
}

func (r *Registry) evicted(id string, ws *navgate.Workspace) {
	ws.Close()
	r.gaugeAdd(-1)
	r.log.Debug("workspace evicted", logger.WorkspaceID(id))
}

func (r *Registry) gaugeAdd(v float64) {
	if r.metrics != nil {
		r.metrics.Workspaces.Add(v)
	}
}
