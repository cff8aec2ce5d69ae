// Package cache fronts the feed queries with a key-value store. The backend
// may expire keys early or lose them entirely; callers must treat every
// answer as advisory. Backend failures are absorbed here and never surface.
package cache

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"instafeed/internal/config"
	"instafeed/internal/monitoring"
)

// Store is the injected cache dependency of the feed service. Get reports a
// miss for anything it cannot answer; Set and Invalidate are best-effort.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context, keys ...string)
}

// NewClient builds the raw redis connection from config.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// Redis is the production Store. Every Set draws a fresh TTL from
// [base, base+jitter) so entries written in the same burst expire spread out
// instead of all at once.
type Redis struct {
	client *redis.Client
	base   time.Duration
	jitter time.Duration
}

func NewRedis(client *redis.Client, base, jitter time.Duration) *Redis {
	return &Redis{client: client, base: base, jitter: jitter}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("cache get %s: %v", key, err)
		}
		monitoring.CacheMissesTotal.Inc()
		return nil, false
	}
	monitoring.CacheHitsTotal.Inc()
	return payload, true
}

func (r *Redis) Set(ctx context.Context, key string, payload []byte) {
	if err := r.client.Set(ctx, key, payload, r.ttl()).Err(); err != nil {
		log.Warnf("cache set %s: %v", key, err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("cache invalidate %v: %v", keys, err)
		return
	}
	monitoring.CacheInvalidationsTotal.Add(float64(len(keys)))
}

func (r *Redis) ttl() time.Duration {
	if r.jitter <= 0 {
		return r.base
	}
	return r.base + rand.N(r.jitter)
}
