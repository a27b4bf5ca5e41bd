package controller

import (
	"fmt"
	"net/http"

	"github.com/Laisky/blog-api/internal/web/blog/model"
	"github.com/Laisky/blog-api/library/auth"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

const (
	serverErrorMessage = "Server Error"

	// CtxKeyRequestID holds the request id in the gin context.
	CtxKeyRequestID = "request_id"
)

// errorStatus maps sentinels to http status, checked in order.
var errorStatus = []struct {
	kind   error
	status int
}{
	{auth.ErrUnauthorized, http.StatusUnauthorized},
	{model.ErrTooManyAttempts, http.StatusTooManyRequests},
	{model.ErrInvalidCredentials, http.StatusBadRequest},
	{model.ErrValidation, http.StatusBadRequest},
	{model.ErrUnsupportedMediaType, http.StatusBadRequest},
	{model.ErrNotFound, http.StatusNotFound},
	{model.ErrConflict, http.StatusConflict},
}

// errorResponse is rendered for every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// StatusOf returns the http status of err.
func StatusOf(err error) int {
	for _, s := range errorStatus {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}

	return http.StatusInternalServerError
}

// messageOf returns the client-facing message of err.
func messageOf(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return serverErrorMessage
	}

	var e *model.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	for _, s := range errorStatus {
		if errors.Is(err, s.kind) {
			return s.kind.Error()
		}
	}

	return serverErrorMessage
}

// ErrorHandler renders the last error attached to the gin context.
// withStack adds the error stack to the response, never enable it in production.
func ErrorHandler(withStack bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		ginErr := ctx.Errors.Last()
		if ginErr == nil || ctx.Writer.Written() {
			return
		}

		err := ginErr.Err
		status := StatusOf(err)
		if hint, ok := ginErr.Meta.(int); ok {
			status = hint
		}

		logger := gmw.GetLogger(ctx).With(zap.String("request_id", ctx.GetString(CtxKeyRequestID)))
		if status >= http.StatusInternalServerError {
			logger.Error("handle request", zap.Error(err), zap.Int("status", status))
		} else {
			logger.Debug("reject request", zap.Error(err), zap.Int("status", status))
		}

		resp := errorResponse{Message: messageOf(err, status)}
		if withStack {
			resp.Stack = fmt.Sprintf("%+v", err)
		}
		ctx.JSON(status, resp)
	}
}
