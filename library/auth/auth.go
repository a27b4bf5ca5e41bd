// Package auth guards gin routes with bearer session tokens.
package auth

import (
	"context"
	"strings"

	"github.com/Laisky/blog-api/library/jwt"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ctxKeyUserID = "auth.user_id"
	ctxKeyEmail  = "auth.email"
	bearerPrefix = "bearer "
)

// ErrUnauthorized is returned for any token problem.
var ErrUnauthorized = errors.New("Not authorized")

// TokenParser verifies a raw token.
type TokenParser interface {
	Parse(token string) (*jwt.UserClaims, error)
}

// Required rejects requests without a valid bearer token.
//
// The failure is attached to the gin context with c.Error and the chain is aborted,
// so the error middleware renders the response.
func Required(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(parser, c.GetHeader("Authorization"))
		if err != nil {
			gmw.GetLogger(c).Debug("reject request", zap.Error(err))
			_ = c.Error(err)
			c.Abort()
			return
		}

		uid, err := primitive.ObjectIDFromHex(claims.ID)
		if err != nil {
			_ = c.Error(errors.Wrapf(ErrUnauthorized, "user id %q", claims.ID))
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, uid)
		c.Set(ctxKeyEmail, claims.Email)
		c.Next()
	}
}

func authenticate(parser TokenParser, header string) (*jwt.UserClaims, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.Wrap(ErrUnauthorized, "missing authorization header")
	}
	if len(header) <= len(bearerPrefix) ||
		!strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return nil, errors.Wrap(ErrUnauthorized, "not a bearer token")
	}

	claims, err := parser.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
	if err != nil {
		return nil, errors.Wrapf(ErrUnauthorized, "%s", err.Error())
	}

	return claims, nil
}

// UserID returns the authenticated user id stored by Required.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	gctx, ok := gmw.GetGinCtxFromStdCtx(ctx)
	if !ok || gctx == nil {
		return primitive.NilObjectID, false
	}

	v, ok := gctx.Get(ctxKeyUserID)
	if !ok {
		return primitive.NilObjectID, false
	}

	uid, ok := v.(primitive.ObjectID)
	return uid, ok
}
