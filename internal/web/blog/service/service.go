// Package service is the service layer of blog.
package service

import (
	"context"
	"time"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence used by Blog, implemented by dao.Blog.
type Store interface {
	ListPosts(ctx context.Context, q *dto.PostQuery) ([]*model.Post, error)
	CountPosts(ctx context.Context, q *dto.PostQuery) (int64, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	InsertPost(ctx context.Context, post *model.Post) error
	UpdatePost(ctx context.Context, id primitive.ObjectID, set bson.D) (*model.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error

	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	InsertUser(ctx context.Context, u *model.User) error
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)

	ListCategories(ctx context.Context) ([]*model.Category, error)
	InsertCategory(ctx context.Context, cate *model.Category) error
	FindCategoriesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Category, error)

	ListComments(ctx context.Context, postID primitive.ObjectID) ([]*model.Comment, error)
	InsertComment(ctx context.Context, c *model.Comment) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Sign(userID, email string) (string, error)
}

// LoginLimiter counts failed logins, implemented by redis.DB.
type LoginLimiter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Blog blog service
type Blog struct {
	logger glog.Logger
	store  Store
	tokens TokenIssuer

	limiter     LoginLimiter
	loginMax    int64
	loginWindow time.Duration

	now func() time.Time
}

// Option configures Blog.
type Option func(*Blog)

// WithLoginLimiter rejects logins of an email after max failures within window.
func WithLoginLimiter(limiter LoginLimiter, max int, window time.Duration) Option {
	return func(b *Blog) {
		b.limiter = limiter
		b.loginMax = int64(max)
		b.loginWindow = window
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Blog) {
		b.now = now
	}
}

// New new blog service
func New(logger glog.Logger, store Store, tokens TokenIssuer, opts ...Option) *Blog {
	b := &Blog{
		logger: logger,
		store:  store,
		tokens: tokens,
		now:    gutils.Clock.GetUTCNow,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}
