// Package controller exposes the blog service over HTTP.
package controller

import (
	"context"
	"mime/multipart"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is the blog service used by the handlers.
type Service interface {
	ListPosts(ctx context.Context, cfg *dto.PostCfg) ([]*model.Post, *dto.PostInfo, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	CreatePost(ctx context.Context, authorID primitive.ObjectID, in *dto.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, in *dto.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error

	UserRegister(ctx context.Context, name, email, password string) (*model.User, string, error)
	UserLogin(ctx context.Context, email, password string) (*model.User, string, error)

	ListComments(ctx context.Context, postID string) ([]*model.Comment, error)
	CreateComment(ctx context.Context, postID, author, text string) (*model.Comment, error)

	ListCategories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
}

// Uploader stores an uploaded image and returns its public URL.
type Uploader interface {
	SaveFile(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

// Blog http handlers of blog
type Blog struct {
	svc     Service
	uploads Uploader
}

// New new blog controller
func New(svc Service, uploads Uploader) *Blog {
	return &Blog{
		svc:     svc,
		uploads: uploads,
	}
}

// Register mounts the api routes, authRequired guards post creation.
func (b *Blog) Register(api gin.IRouter, authRequired gin.HandlerFunc) {
	authGrp := api.Group("/auth")
	authGrp.POST("/register", b.UserRegister)
	authGrp.POST("/login", b.UserLogin)

	posts := api.Group("/posts")
	posts.GET("", b.ListPosts)
	posts.GET("/:id", b.GetPost)
	posts.POST("", authRequired, b.CreatePost)
	posts.PUT("/:id", b.UpdatePost)
	posts.DELETE("/:id", b.DeletePost)

	categories := api.Group("/categories")
	categories.GET("", b.ListCategories)
	categories.POST("", b.CreateCategory)

	comments := api.Group("/comments")
	comments.GET("/:postId", b.ListComments)
	comments.POST("", b.CreateComment)
}

// response is the envelope of every endpoint except categories.
type response struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    any           `json:"data,omitempty"`
	Meta    *dto.PostInfo `json:"meta,omitempty"`
}

func ok(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, response{Success: true, Data: data})
}

// fail hands err to the error middleware.
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}

// failAs hands err to the error middleware with a fixed status.
func failAs(ctx *gin.Context, status int, err error) {
	_ = ctx.Error(err).SetMeta(status)
	ctx.Abort()
}
