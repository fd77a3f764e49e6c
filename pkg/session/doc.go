// Package session persists the durable subset of an access namespace: the
// access and refresh tokens, granted access codes, the login timestamp and,
// for namespaces that opt in, the last generated menu tree.
//
// Everything derived from those fields (route trees, the access-checked
// latch, the expired flag) stays in memory and is rebuilt after a reload.
//
// Two Store implementations ship with the package:
//
//   - MemoryStore keeps copies in a map guarded by a RWMutex.
//   - RedisStore keeps JSON documents in redis (github.com/redis/go-redis/v9)
//     under a configurable key prefix with an optional TTL.
//
// # Usage
//
//	client, _ := redis.Connect(ctx, redisCfg)
//	store := session.NewRedisStore(client, session.WithTTL(72*time.Hour))
//
//	_ = store.Save(ctx, "ws-1:admin", session.NewSession(token, time.Now()))
//	sess, err := store.Load(ctx, "ws-1:admin")
//	if errors.Is(err, session.ErrSessionNotFound) {
//	    // fresh visitor
//	}
package session
