package dao

import (
	"context"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListComments returns the comments of a post, newest first.
func (d *Blog) ListComments(ctx context.Context, postID primitive.ObjectID) ([]*model.Comment, error) {
	cur, err := d.GetCommentsCol().Find(ctx,
		bson.D{{Key: "post", Value: postID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "find comments of %s", postID.Hex())
	}

	comments := []*model.Comment{}
	if err = cur.All(ctx, &comments); err != nil {
		return nil, errors.Wrap(err, "load comments")
	}

	return comments, nil
}

// InsertComment saves a new comment.
func (d *Blog) InsertComment(ctx context.Context, c *model.Comment) error {
	if _, err := d.GetCommentsCol().InsertOne(ctx, c); err != nil {
		return errors.Wrapf(err, "insert comment on %s", c.Post.Hex())
	}

	return nil
}

// InsertComments saves comments in one batch.
func (d *Blog) InsertComments(ctx context.Context, comments []*model.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	docs := make([]any, 0, len(comments))
	for _, c := range comments {
		docs = append(docs, c)
	}

	if _, err := d.GetCommentsCol().InsertMany(ctx, docs); err != nil {
		return errors.Wrapf(err, "insert %d comments", len(comments))
	}

	return nil
}
