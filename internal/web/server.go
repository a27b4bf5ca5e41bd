// Package web gin server
package web

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Laisky/blog-api/internal/library/media"
	"github.com/Laisky/blog-api/internal/web/blog/controller"
	"github.com/Laisky/blog-api/library/config"
	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

const (
	// Banner is returned by GET /.
	Banner = "✅ MERN Blog API is running..."

	// defaultBodyLimit caps non-upload request bodies.
	defaultBodyLimit = 10 << 20
	// multipartOverhead leaves room for form fields next to the upload.
	multipartOverhead = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Option configures the engine.
type Option func(*serverOption)

type serverOption struct {
	debug bool
}

// WithDebug keeps gin in debug mode.
func WithDebug(debug bool) Option {
	return func(o *serverOption) {
		o.debug = debug
	}
}

// NewEngine builds the http engine of the blog api.
func NewEngine(settings *config.Settings,
	blog *controller.Blog,
	authRequired gin.HandlerFunc,
	uploads media.Store,
	opts ...Option,
) *gin.Engine {
	opt := new(serverOption)
	for _, f := range opts {
		f(opt)
	}
	if !opt.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	bodyLimit := int64(defaultBodyLimit)
	if settings.UploadsMaxBytes+multipartOverhead > bodyLimit {
		bodyLimit = settings.UploadsMaxBytes + multipartOverhead
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		requestID,
		gmw.NewLoggerMiddleware(
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		allowCORS(settings.CORSOrigins),
		limitBody(bodyLimit),
		controller.ErrorHandler(!settings.IsProduction()),
	)

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	server.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, Banner)
	})

	if local, ok := uploads.(*media.LocalStore); ok {
		server.Static(media.URLPrefix, local.Dir())
	} else if uploads != nil {
		server.GET(media.URLPrefix+":name", serveUpload(uploads))
	}

	blog.Register(server.Group("/api"), authRequired)
	return server
}

// serveUpload streams an upload from store.
func serveUpload(store media.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		name := ctx.Param("name")
		rc, err := store.Open(ctx, name)
		if err != nil {
			if errors.Is(err, media.ErrNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			gmw.GetLogger(ctx).Error("open upload", zap.Error(err), zap.String("name", name))
			ctx.Status(http.StatusInternalServerError)
			return
		}
		defer gutils.CloseWithLog(rc, gmw.GetLogger(ctx))

		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		ctx.Header("Cache-Control", "public, max-age=86400")
		ctx.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}

// limitBody caps the request body, reads beyond limit fail.
func limitBody(limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
		}
		ctx.Next()
	}
}

// Run serves handler on addr until ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	logger := log.Logger.Named("web")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on http", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %q", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutdown http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}

	return nil
}

