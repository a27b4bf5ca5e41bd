package dao

import (
	"context"
	"regexp"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"
	mongoSDK "github.com/Laisky/blog-api/library/db/mongo"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostFilter builds the mongo filter of q.
func PostFilter(q *dto.PostQuery) bson.D {
	filter := bson.D{}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}

	switch {
	case q.CategoryID != nil:
		filter = append(filter, bson.E{Key: "category", Value: bson.D{{Key: "$in", Value: bson.A{
			*q.CategoryID,
			q.CategoryID.Hex(),
		}}}})
	case q.CategoryName != "":
		filter = append(filter, bson.E{Key: "$and", Value: bson.A{
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "category.name", Value: q.CategoryName}},
				bson.D{{Key: "category", Value: q.CategoryName}},
			}}},
		}})
	}

	return filter
}

// ListPosts returns one page of posts matching q, newest first.
func (d *Blog) ListPosts(ctx context.Context, q *dto.PostQuery) ([]*model.Post, error) {
	opt := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Skip).
		SetLimit(q.Limit)

	cur, err := d.GetPostsCol().Find(ctx, PostFilter(q), opt)
	if err != nil {
		return nil, errors.Wrap(err, "find posts")
	}

	posts := []*model.Post{}
	if err = cur.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "load posts")
	}

	return posts, nil
}

// CountPosts counts all posts matching q, ignoring skip and limit.
func (d *Blog) CountPosts(ctx context.Context, q *dto.PostQuery) (int64, error) {
	n, err := d.GetPostsCol().CountDocuments(ctx, PostFilter(q))
	if err != nil {
		return 0, errors.Wrap(err, "count posts")
	}

	return n, nil
}

// GetPost loads one post.
func (d *Blog) GetPost(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	post := new(model.Post)
	if err := d.GetPostsCol().
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}).
		Decode(post); err != nil {
		if mongoSDK.NotFound(err) {
			return nil, model.NewError(model.ErrNotFound, "Post not found")
		}

		return nil, errors.Wrapf(err, "find post %s", id.Hex())
	}

	return post, nil
}

// InsertPost saves a new post.
func (d *Blog) InsertPost(ctx context.Context, post *model.Post) error {
	if _, err := d.GetPostsCol().InsertOne(ctx, post); err != nil {
		if mongoSDK.IsDuplicateKey(err) {
			return model.NewError(model.ErrConflict, "Slug %q already exists", post.Slug)
		}

		return errors.Wrap(err, "insert post")
	}

	return nil
}

// UpdatePost sets the given fields and returns the updated post.
func (d *Blog) UpdatePost(ctx context.Context,
	id primitive.ObjectID, set bson.D) (*model.Post, error) {
	post := new(model.Post)
	err := d.GetPostsCol().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(post)
	switch {
	case err == nil:
		return post, nil
	case mongoSDK.NotFound(err):
		return nil, model.NewError(model.ErrNotFound, "Post not found")
	case mongoSDK.IsDuplicateKey(err):
		return nil, model.NewError(model.ErrConflict, "Slug already exists")
	default:
		return nil, errors.Wrapf(err, "update post %s", id.Hex())
	}
}

// DeletePost removes one post, its comments are kept.
func (d *Blog) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	ret, err := d.GetPostsCol().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Wrapf(err, "delete post %s", id.Hex())
	}
	if ret.DeletedCount == 0 {
		return model.NewError(model.ErrNotFound, "Post not found")
	}

	return nil
}

// FindPostIDsBySlugs maps each existing slug to its post id.
func (d *Blog) FindPostIDsBySlugs(ctx context.Context, slugs []string) (map[string]primitive.ObjectID, error) {
	ids := make(map[string]primitive.ObjectID, len(slugs))
	if len(slugs) == 0 {
		return ids, nil
	}

	cur, err := d.GetPostsCol().Find(ctx,
		bson.D{{Key: "slug", Value: bson.D{{Key: "$in", Value: slugs}}}},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "slug", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find posts by slugs")
	}

	var docs []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Slug string             `bson:"slug"`
	}
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "load posts by slugs")
	}

	for _, doc := range docs {
		ids[doc.Slug] = doc.ID
	}

	return ids, nil
}
