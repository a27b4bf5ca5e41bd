package dao

import (
	"context"

	"github.com/Laisky/blog-api/internal/web/blog/model"
	mongoSDK "github.com/Laisky/blog-api/library/db/mongo"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListCategories returns all categories sorted by name.
func (d *Blog) ListCategories(ctx context.Context) ([]*model.Category, error) {
	cur, err := d.GetCategoriesCol().Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find all categories")
	}

	cates := []*model.Category{}
	if err = cur.All(ctx, &cates); err != nil {
		return nil, errors.Wrap(err, "load all categories")
	}

	return cates, nil
}

// InsertCategory saves a new category.
func (d *Blog) InsertCategory(ctx context.Context, cate *model.Category) error {
	if _, err := d.GetCategoriesCol().InsertOne(ctx, cate); err != nil {
		if mongoSDK.IsDuplicateKey(err) {
			return model.NewError(model.ErrConflict, "Error creating category")
		}

		return errors.Wrapf(err, "insert category %q", cate.Name)
	}

	return nil
}

// FindCategoriesByIDs loads the categories among ids, missing ids are skipped.
func (d *Blog) FindCategoriesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Category, error) {
	cates := []*model.Category{}
	if len(ids) == 0 {
		return cates, nil
	}

	cur, err := d.GetCategoriesCol().Find(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, errors.Wrap(err, "find categories")
	}

	if err = cur.All(ctx, &cates); err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	return cates, nil
}
