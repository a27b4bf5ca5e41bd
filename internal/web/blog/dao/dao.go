// Package dao contains all the data access object used in the application.
package dao

import (
	"context"

	"github.com/Laisky/blog-api/library/db/mongo"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colPosts      = "posts"
	colUsers      = "users"
	colCategories = "categories"
	colComments   = "comments"
)

// Blog dao type
type Blog struct {
	logger glog.Logger
	db     mongo.DB
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Blog {
	return &Blog{
		logger: logger,
		db:     db,
	}
}

// GetPostsCol get posts collection
func (d *Blog) GetPostsCol() *mongoLib.Collection {
	return d.db.GetCol(colPosts)
}

// GetUsersCol get users collection
func (d *Blog) GetUsersCol() *mongoLib.Collection {
	return d.db.GetCol(colUsers)
}

// GetCategoriesCol get categories collection
func (d *Blog) GetCategoriesCol() *mongoLib.Collection {
	return d.db.GetCol(colCategories)
}

// GetCommentsCol get comments collection
func (d *Blog) GetCommentsCol() *mongoLib.Collection {
	return d.db.GetCol(colComments)
}

// EnsureIndexes creates the unique and lookup indexes the service relies on.
// Creating an existing index is a no-op.
func (d *Blog) EnsureIndexes(ctx context.Context) error {
	for _, idx := range []struct {
		col   *mongoLib.Collection
		model mongoLib.IndexModel
	}{
		{d.GetPostsCol(), mongoLib.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{d.GetPostsCol(), mongoLib.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		}},
		{d.GetCategoriesCol(), mongoLib.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{d.GetUsersCol(), mongoLib.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{d.GetCommentsCol(), mongoLib.IndexModel{
			Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
	} {
		name, err := idx.col.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return errors.Wrapf(err, "create index on %s", idx.col.Name())
		}

		d.logger.Debug("ensure index",
			zap.String("collection", idx.col.Name()),
			zap.String("index", name))
	}

	return nil
}
