// Command navd runs the navigation gateway: workspaces assembled from the
// static route trees, durable sessions in Redis (or memory when REDIS_URL is
// unset) and the HTTP surface of pkg/gateway.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/navgate"
	"github.com/dmitrymomot/navgate/pkg/config"
	"github.com/dmitrymomot/navgate/pkg/gateway"
	"github.com/dmitrymomot/navgate/pkg/httpserver"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/redis"
	"github.com/dmitrymomot/navgate/pkg/session"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithContextExtractors(gateway.RequestIDExtractor()))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("navd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		httpCfg    httpserver.Config
		redisCfg   redis.Config
		gatewayCfg gateway.Config
		appCfg     navgate.Config
		filesCfg   filesConfig
	)
	for _, load := range []error{
		config.Load(&httpCfg),
		config.Load(&redisCfg),
		config.Load(&gatewayCfg),
		config.Load(&appCfg),
		config.Load(&filesCfg),
	} {
		if load != nil {
			return load
		}
	}

	trees, err := loadTrees(filesCfg)
	if err != nil {
		return err
	}

	checks := map[string]httpserver.Check{}
	var store session.Store = session.NewMemoryStore()
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		store = session.NewRedisStore(client,
			session.WithKeyPrefix(redisCfg.KeyPrefix),
			session.WithTTL(redisCfg.SessionTTL),
		)
		checks["redis"] = redis.Healthcheck(client)
	} else {
		log.WarnContext(ctx, "REDIS_URL is empty, sessions are kept in memory")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gateway.NewMetrics(reg)

	deps := navgate.Deps{
		Config:      appCfg,
		Sessions:    store,
		CoreRoutes:  trees.core,
		AdminRoutes: trees.admin,
		Registry:    trees.registry,
		Forbidden:   trees.forbidden,
		HTTPClient:  &http.Client{},
		Logger:      log,
		OnExpired: func(workspaceID, namespace string) {
			log.Info("login expired", logger.WorkspaceID(workspaceID), logger.Namespace(namespace))
		},
	}
	registry, err := gateway.NewRegistry(gatewayCfg.MaxWorkspaces, gateway.NewFactory(deps, metrics), metrics, log)
	if err != nil {
		return err
	}
	defer registry.Close()

	opts := []gateway.Option{
		gateway.WithConfig(gatewayCfg),
		gateway.WithMetrics(metrics, reg),
		gateway.WithLogger(log),
	}
	for name, check := range checks {
		opts = append(opts, gateway.WithReadinessCheck(name, check))
	}
	srv := gateway.New(registry, opts...)

	err = httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, srv.Router())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
