// Package redis connects to the Redis server that stores durable sessions.
//
// Connect retries the first ping according to Config; Healthcheck adapts a
// client to a readiness probe.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	sessions := session.NewRedisStore(client,
//		session.WithKeyPrefix(cfg.KeyPrefix),
//		session.WithTTL(cfg.SessionTTL),
//	)
package redis
