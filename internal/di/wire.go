//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"instafeed/internal/comment"
	"instafeed/internal/config"
	"instafeed/internal/dbmongo"
	"instafeed/internal/feed"
	"instafeed/internal/media"
	"instafeed/internal/user"
)

// InitializeApp builds the full service graph; wire generates the real body.
func InitializeApp() (*App, func(), error) {
	wire.Build(
		config.Load,
		provideMongo,
		provideRedis,
		provideCacheStore,
		dbmongo.NewImageStore,

		user.NewRepository,
		user.NewService,
		user.NewHandler,

		feed.NewPostRepository,
		feed.NewSaveRepository,
		feed.NewService,
		feed.NewHandler,

		comment.NewRepository,
		comment.NewService,
		comment.NewHandler,

		media.NewHandler,

		wire.Bind(new(feed.UserDirectory), new(user.Repository)),
		wire.Bind(new(feed.ImageStorage), new(*dbmongo.ImageStore)),
		wire.Bind(new(user.ImageStorage), new(*dbmongo.ImageStore)),

		newApp,
	)
	return nil, nil, nil
}
