package cmd

import (
	"context"

	"github.com/Laisky/blog-api/internal/web/blog/dao"
	"github.com/Laisky/blog-api/library/config"
	"github.com/Laisky/blog-api/library/db/mongo"
	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// connectBlogDB dials mongo and returns the dao on top of it.
// The caller closes the returned DB.
func connectBlogDB(ctx context.Context, settings *config.Settings) (mongo.DB, *dao.Blog, error) {
	db, err := mongo.NewDB(ctx, mongo.DialInfo{
		URI:    settings.MongoURI,
		Addr:   settings.MongoAddr,
		DBName: settings.MongoDB,
		User:   settings.MongoUser,
		Pwd:    settings.MongoPwd,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect mongo")
	}

	return db, dao.New(log.Logger.Named("dao"), db), nil
}

func closeDB(ctx context.Context, db mongo.DB) {
	if err := db.Close(ctx); err != nil {
		log.Logger.Error("close mongo", zap.Error(err))
	}
}
