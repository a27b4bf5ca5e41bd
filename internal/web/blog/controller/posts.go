package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"
	"github.com/Laisky/blog-api/library/auth"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

// postView renders a post with its public url.
type postView struct {
	*model.Post
	URL string `json:"url"`
}

func newPostView(p *model.Post) *postView {
	return &postView{Post: p, URL: p.URL()}
}

func newPostViews(posts []*model.Post) []*postView {
	views := make([]*postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views
}

// ListPosts GET /api/posts
func (b *Blog) ListPosts(ctx *gin.Context) {
	cfg := &dto.PostCfg{
		Search:   ctx.Query("search"),
		Category: ctx.Query("category"),
	}

	var err error
	if cfg.Page, err = queryInt(ctx, "page"); err != nil {
		fail(ctx, err)
		return
	}
	if cfg.Limit, err = queryInt(ctx, "limit"); err != nil {
		fail(ctx, err)
		return
	}

	posts, info, err := b.svc.ListPosts(ctx, cfg)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response{
		Success: true,
		Data:    newPostViews(posts),
		Meta:    info,
	})
}

// queryInt parses an optional integer query, absent means 0.
func queryInt(ctx *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v == 0 {
		return 0, model.NewError(model.ErrValidation, "%s must be a positive integer", key)
	}
	return v, nil
}

// GetPost GET /api/posts/:id
func (b *Blog) GetPost(ctx *gin.Context) {
	post, err := b.svc.GetPost(ctx, ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}

	ok(ctx, http.StatusOK, newPostView(post))
}

// CreatePost POST /api/posts
func (b *Blog) CreatePost(ctx *gin.Context) {
	uid, found := auth.UserID(ctx)
	if !found {
		fail(ctx, errors.WithStack(auth.ErrUnauthorized))
		return
	}

	in, err := b.bindPostInput(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	post, err := b.svc.CreatePost(ctx, uid, in)
	if err != nil {
		fail(ctx, err)
		return
	}

	ok(ctx, http.StatusCreated, newPostView(post))
}

// UpdatePost PUT /api/posts/:id
func (b *Blog) UpdatePost(ctx *gin.Context) {
	in, err := b.bindPostInput(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	post, err := b.svc.UpdatePost(ctx, ctx.Param("id"), in)
	if err != nil {
		fail(ctx, err)
		return
	}

	ok(ctx, http.StatusOK, newPostView(post))
}

// DeletePost DELETE /api/posts/:id
func (b *Blog) DeletePost(ctx *gin.Context) {
	if err := b.svc.DeletePost(ctx, ctx.Param("id")); err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response{
		Success: true,
		Message: "Post deleted successfully",
	})
}
