package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	blog, store, tokens := newTestBlog(t)
	ctx := context.Background()

	u, token, err := blog.UserRegister(ctx, "Jane", " Jane@Example.com ", "pa55word")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", u.Email)
	require.NotEqual(t, "pa55word", u.Password)
	require.Len(t, store.users, 1)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, u.GetID(), claims.ID)
	require.Equal(t, u.Email, claims.Email)

	_, _, err = blog.UserRegister(ctx, "Jane 2", "jane@example.com", "other")
	require.ErrorIs(t, err, model.ErrConflict)
	require.Len(t, store.users, 1)
}

func TestUserRegisterValidation(t *testing.T) {
	blog, store, _ := newTestBlog(t)
	long := strings.Repeat("a", maxUserPasswordBytes+1)

	for name, args := range map[string][3]string{
		"no name":       {"", "a@b.com", "pw"},
		"bad email":     {"Jane", "not-an-email", "pw"},
		"display email": {"Jane", "Jane <a@b.com>", "pw"},
		"no password":   {"Jane", "a@b.com", " "},
		"long password": {"Jane", "a@b.com", long},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := blog.UserRegister(context.Background(), args[0], args[1], args[2])
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}
	require.Empty(t, store.users)
}

func TestUserLogin(t *testing.T) {
	blog, _, tokens := newTestBlog(t)
	ctx := context.Background()

	registered, _, err := blog.UserRegister(ctx, "Jane", "jane@example.com", "pa55word")
	require.NoError(t, err)

	u, token, err := blog.UserLogin(ctx, "JANE@example.com", "pa55word")
	require.NoError(t, err)
	require.Equal(t, registered.ID, u.ID)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, registered.GetID(), claims.ID)

	_, _, wrongPassword := blog.UserLogin(ctx, "jane@example.com", "nope")
	_, _, unknownUser := blog.UserLogin(ctx, "ghost@example.com", "pa55word")
	require.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, model.ErrInvalidCredentials)

	_, _, err = blog.UserLogin(ctx, "", "")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestUserLoginThrottle(t *testing.T) {
	limiter := &memLimiter{}
	blog, _, _ := newTestBlog(t, WithLoginLimiter(limiter, 3, time.Minute))
	ctx := context.Background()

	_, _, err := blog.UserRegister(ctx, "Jane", "jane@example.com", "pa55word")
	require.NoError(t, err)

	// a success resets the counter
	_, _, err = blog.UserLogin(ctx, "jane@example.com", "bad")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, _, err = blog.UserLogin(ctx, "jane@example.com", "pa55word")
	require.NoError(t, err)
	require.Zero(t, limiter.counts[loginFailureKeyPrefix+"jane@example.com"])

	for i := 0; i < 3; i++ {
		_, _, err = blog.UserLogin(ctx, "jane@example.com", "bad")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	_, _, err = blog.UserLogin(ctx, "jane@example.com", "pa55word")
	require.ErrorIs(t, err, model.ErrTooManyAttempts)

	// other accounts are not affected
	_, _, err = blog.UserLogin(ctx, "ghost@example.com", "x")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)

	require.NoError(t, limiter.Reset(ctx, loginFailureKeyPrefix+"jane@example.com"))
	_, _, err = blog.UserLogin(ctx, "jane@example.com", "pa55word")
	require.NoError(t, err)
}
