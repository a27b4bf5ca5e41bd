package controller

import (
	"net/http"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Post   string `json:"post" form:"post"`
	Author string `json:"author" form:"author"`
	Text   string `json:"text" form:"text"`
}

// ListComments GET /api/comments/:postId
func (b *Blog) ListComments(ctx *gin.Context) {
	comments, err := b.svc.ListComments(ctx, ctx.Param("postId"))
	if err != nil {
		fail(ctx, err)
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	ok(ctx, http.StatusOK, comments)
}

// CreateComment POST /api/comments
func (b *Blog) CreateComment(ctx *gin.Context) {
	req := new(commentRequest)
	if err := ctx.ShouldBind(req); err != nil {
		fail(ctx, model.NewError(model.ErrValidation, "invalid request body"))
		return
	}

	comment, err := b.svc.CreateComment(ctx, req.Post, req.Author, req.Text)
	if err != nil {
		fail(ctx, err)
		return
	}

	ok(ctx, http.StatusOK, comment)
}
