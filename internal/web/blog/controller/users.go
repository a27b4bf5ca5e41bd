package controller

import (
	"net/http"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// userView is the public part of a user.
type userView struct {
	ID    string `json:"_id" copier:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *userView `json:"user"`
}

func newUserView(u *model.User) (*userView, error) {
	view := new(userView)
	if err := copier.Copy(view, u); err != nil {
		return nil, errors.Wrap(err, "copy user")
	}
	view.ID = u.GetID()

	return view, nil
}

// UserRegister POST /api/auth/register
func (b *Blog) UserRegister(ctx *gin.Context) {
	req := new(registerRequest)
	if err := ctx.ShouldBind(req); err != nil {
		fail(ctx, model.NewError(model.ErrValidation, "invalid request body"))
		return
	}

	u, token, err := b.svc.UserRegister(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			failAs(ctx, http.StatusBadRequest, err)
			return
		}
		fail(ctx, err)
		return
	}

	b.renderAuth(ctx, http.StatusCreated, "User registered successfully", u, token)
}

// UserLogin POST /api/auth/login
func (b *Blog) UserLogin(ctx *gin.Context) {
	req := new(loginRequest)
	if err := ctx.ShouldBind(req); err != nil {
		fail(ctx, model.NewError(model.ErrValidation, "invalid request body"))
		return
	}

	u, token, err := b.svc.UserLogin(ctx, req.Email, req.Password)
	if err != nil {
		fail(ctx, maskLoginError(err))
		return
	}

	b.renderAuth(ctx, http.StatusOK, "Login successful", u, token)
}

func (b *Blog) renderAuth(ctx *gin.Context, status int, msg string, u *model.User, token string) {
	view, err := newUserView(u)
	if err != nil {
		fail(ctx, err)
		return
	}

	ctx.JSON(status, authResponse{
		Success: true,
		Message: msg,
		Token:   token,
		User:    view,
	})
}
