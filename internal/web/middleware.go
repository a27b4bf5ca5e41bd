package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/controller"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-Id"
	maxRequestIDLen = 128
)

// requestID reuses a sane incoming X-Request-Id or generates one.
func requestID(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.GetHeader(headerRequestID))
	if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, "\r\n") {
		id = uuid.NewString()
	}

	ctx.Set(controller.CtxKeyRequestID, id)
	ctx.Header(headerRequestID, id)
	ctx.Next()
}

// allowCORS echoes allowed origins, an empty list or "*" allows every origin.
func allowCORS(origins []string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
		}
	}

	allowAny := len(allowed) == 0 || allowed["*"]

	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		allowedOrigin := ""

		if origin != "" {
			if parsed, err := url.Parse(origin); err == nil && parsed.Scheme != "" && parsed.Host != "" {
				if allowAny || allowed[strings.ToLower(parsed.Scheme+"://"+parsed.Host)] {
					allowedOrigin = origin
				}
			}
		}

		if allowedOrigin != "" {
			ctx.Header("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With, X-Request-Id")
			ctx.Header("Access-Control-Expose-Headers", headerRequestID)
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}
