package controller

import (
	"net/http"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name" form:"name"`
}

// ListCategories GET /api/categories, renders a bare array.
func (b *Blog) ListCategories(ctx *gin.Context) {
	cates, err := b.svc.ListCategories(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	if cates == nil {
		cates = []*model.Category{}
	}

	ctx.JSON(http.StatusOK, cates)
}

// CreateCategory POST /api/categories, renders the bare category.
func (b *Blog) CreateCategory(ctx *gin.Context) {
	req := new(categoryRequest)
	if err := ctx.ShouldBind(req); err != nil {
		fail(ctx, model.NewError(model.ErrValidation, "invalid request body"))
		return
	}

	cate, err := b.svc.CreateCategory(ctx, req.Name)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			failAs(ctx, http.StatusBadRequest, err)
			return
		}
		fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, cate)
}
