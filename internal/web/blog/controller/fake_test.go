package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"
	"github.com/Laisky/blog-api/library/auth"
	"github.com/Laisky/blog-api/library/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ginModeOnce sync.Once

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

// fakeService records calls and returns canned results.
type fakeService struct {
	mu sync.Mutex

	listCfg   *dto.PostCfg
	posts     []*model.Post
	info      *dto.PostInfo
	postInput *dto.PostInput
	authorID  primitive.ObjectID
	err       error

	user  *model.User
	token string

	comments   []*model.Comment
	categories []*model.Category
	calls      int
}

func (f *fakeService) called() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeService) ListPosts(_ context.Context, cfg *dto.PostCfg) ([]*model.Post, *dto.PostInfo, error) {
	f.called()
	f.listCfg = cfg
	return f.posts, f.info, f.err
}

func (f *fakeService) GetPost(context.Context, string) (*model.Post, error) {
	f.called()
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[0], nil
}

func (f *fakeService) CreatePost(_ context.Context, authorID primitive.ObjectID, in *dto.PostInput) (*model.Post, error) {
	f.called()
	f.authorID, f.postInput = authorID, in
	if f.err != nil {
		return nil, f.err
	}
	p := model.NewPost(time.Now())
	p.Title = *in.Title
	p.Slug = "hello-world"
	if in.FeaturedImage != nil {
		p.FeaturedImage = *in.FeaturedImage
	}
	return p, nil
}

func (f *fakeService) UpdatePost(_ context.Context, _ string, in *dto.PostInput) (*model.Post, error) {
	f.called()
	f.postInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[0], nil
}

func (f *fakeService) DeletePost(context.Context, string) error {
	f.called()
	return f.err
}

func (f *fakeService) UserRegister(context.Context, string, string, string) (*model.User, string, error) {
	f.called()
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeService) UserLogin(context.Context, string, string) (*model.User, string, error) {
	f.called()
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeService) ListComments(context.Context, string) ([]*model.Comment, error) {
	f.called()
	return f.comments, f.err
}

func (f *fakeService) CreateComment(_ context.Context, postID, author, text string) (*model.Comment, error) {
	f.called()
	if f.err != nil {
		return nil, f.err
	}
	oid, _ := primitive.ObjectIDFromHex(postID)
	return &model.Comment{ID: primitive.NewObjectID(), Post: oid, Author: author, Text: text}, nil
}

func (f *fakeService) ListCategories(context.Context) ([]*model.Category, error) {
	f.called()
	return f.categories, f.err
}

func (f *fakeService) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	f.called()
	if f.err != nil {
		return nil, f.err
	}
	return &model.Category{ID: primitive.NewObjectID(), Name: name}, nil
}

func newTestRouter(t *testing.T, svc Service, uploads Uploader) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	setupGinTestMode()

	tokens, err := jwt.NewManager([]byte("controller-test-secret"), time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(ErrorHandler(false))
	New(svc, uploads).Register(r.Group("/api"), auth.Required(tokens))
	return r, tokens
}
