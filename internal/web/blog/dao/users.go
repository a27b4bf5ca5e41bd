package dao

import (
	"context"

	"github.com/Laisky/blog-api/internal/web/blog/model"
	mongoSDK "github.com/Laisky/blog-api/library/db/mongo"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindUserByEmail loads a user by its normalized email.
func (d *Blog) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	d.logger.Debug("FindUserByEmail", zap.String("email", email))
	u := new(model.User)
	if err := d.GetUsersCol().
		FindOne(ctx, bson.D{{Key: "email", Value: email}}).
		Decode(u); err != nil {
		if mongoSDK.NotFound(err) {
			return nil, errors.Wrapf(model.ErrNotFound, "user %q", email)
		}

		return nil, errors.Wrapf(err, "find user %q", email)
	}

	return u, nil
}

// InsertUser saves a new user.
func (d *Blog) InsertUser(ctx context.Context, u *model.User) error {
	if _, err := d.GetUsersCol().InsertOne(ctx, u); err != nil {
		if mongoSDK.IsDuplicateKey(err) {
			return model.NewError(model.ErrConflict, "User already exists")
		}

		return errors.Wrapf(err, "insert user %q", u.Email)
	}

	return nil
}

// FindUsersByIDs loads the users among ids, missing ids are skipped.
func (d *Blog) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}

	cur, err := d.GetUsersCol().Find(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		options.Find().SetProjection(bson.D{{Key: "password", Value: 0}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}

	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "load users")
	}

	return users, nil
}
