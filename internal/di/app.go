// Package di assembles the service graph. Run `wire` after changing the
// provider set; wire_gen.go is the generated result.
package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"instafeed/internal/cache"
	"instafeed/internal/comment"
	"instafeed/internal/config"
	"instafeed/internal/dbmongo"
	"instafeed/internal/feed"
	"instafeed/internal/media"
	"instafeed/internal/user"
)

// App is the assembled service: every handler plus the shared resources the
// entrypoint manages (connections, indexes).
type App struct {
	Config *config.Config
	Mongo  *dbmongo.MongoClient
	Redis  *redis.Client

	FeedHandler    *feed.Handler
	UserHandler    *user.Handler
	CommentHandler *comment.Handler
	MediaHandler   *media.Handler
}

func newApp(
	cfg *config.Config,
	mongo *dbmongo.MongoClient,
	redisClient *redis.Client,
	feedHandler *feed.Handler,
	userHandler *user.Handler,
	commentHandler *comment.Handler,
	mediaHandler *media.Handler,
) *App {
	return &App{
		Config:         cfg,
		Mongo:          mongo,
		Redis:          redisClient,
		FeedHandler:    feedHandler,
		UserHandler:    userHandler,
		CommentHandler: commentHandler,
		MediaHandler:   mediaHandler,
	}
}

func provideMongo(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	mc, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := mc.Close(context.Background()); err != nil {
			log.Warnf("close mongo connection: %v", err)
		}
	}
	return mc, cleanup, nil
}

func provideRedis(cfg *config.Config) (*redis.Client, func()) {
	client := cache.NewClient(cfg)
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warnf("close redis client: %v", err)
		}
	}
	return client, cleanup
}

func provideCacheStore(client *redis.Client, cfg *config.Config) cache.Store {
	return cache.NewRedis(client, cfg.Cache.BaseTTL, cfg.Cache.Jitter)
}
