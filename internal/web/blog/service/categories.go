package service

import (
	"context"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListCategories returns all categories.
func (s *Blog) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory saves a category with a unique name.
func (s *Blog) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name, err := sanitizeRequiredText(name, model.CategoryNameMaxLen, "Category name")
	if err != nil {
		return nil, err
	}

	now := s.now()
	cate := &model.Category{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
	}
	if err = s.store.InsertCategory(ctx, cate); err != nil {
		return nil, err
	}

	gmw.GetLogger(ctx).Info("create category", zap.String("name", name))
	return cate, nil
}
