package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Laisky/blog-api/internal/library/media"
	"github.com/Laisky/blog-api/internal/web"
	"github.com/Laisky/blog-api/internal/web/blog/controller"
	"github.com/Laisky/blog-api/internal/web/blog/service"
	"github.com/Laisky/blog-api/library/auth"
	"github.com/Laisky/blog-api/library/config"
	"github.com/Laisky/blog-api/library/db/redis"
	"github.com/Laisky/blog-api/library/jwt"
	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	redisSDK "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `REST API service for the blog`,
	Args:  gcmd.NoExtraArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		settings, err := initialize(ctx, cmd)
		if err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}

		if err := runAPI(ctx, settings, gconfig.Shared.GetString("listen")); err != nil {
			log.Logger.Panic("run api", zap.Error(err))
		}
	},
}

// runAPI wires every component and serves until ctx is done.
func runAPI(ctx context.Context, settings *config.Settings, addr string) error {
	db, blogDao, err := connectBlogDB(ctx, settings)
	if err != nil {
		return errors.WithStack(err)
	}
	defer closeDB(context.Background(), db)

	if err = blogDao.EnsureIndexes(ctx); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	tokens, err := jwt.NewManager([]byte(settings.Secret), settings.TokenTTL)
	if err != nil {
		return errors.Wrap(err, "new jwt manager")
	}

	var opts []service.Option
	if settings.RedisAddr != "" {
		rdb := redis.NewDB(&redisSDK.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPwd,
			DB:       settings.RedisDB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Logger.Error("close redis", zap.Error(err))
			}
		}()

		// login throttling fails open, an unreachable redis only gets a warning
		if err := rdb.Ping(ctx); err != nil {
			log.Logger.Warn("ping redis", zap.Error(err), zap.String("addr", settings.RedisAddr))
		}

		opts = append(opts, service.WithLoginLimiter(rdb, settings.LoginMaxFailure, settings.LoginWindow))
	}

	svc := service.New(log.Logger.Named("blog"), blogDao, tokens, opts...)

	store, err := newMediaStore(ctx, settings)
	if err != nil {
		return errors.Wrap(err, "new media store")
	}
	intake, err := media.NewIntake(store, settings.UploadsMaxBytes)
	if err != nil {
		return errors.Wrap(err, "new media intake")
	}

	engine := web.NewEngine(settings,
		controller.New(svc, intake),
		auth.Required(tokens),
		intake.Store(),
		web.WithDebug(gconfig.Shared.GetBool("debug")),
	)

	return web.Run(ctx, addr, engine)
}

// newMediaStore keeps uploads in S3 when an endpoint is configured,
// otherwise on local disk.
func newMediaStore(ctx context.Context, settings *config.Settings) (media.Store, error) {
	if settings.S3Endpoint == "" {
		log.Logger.Info("save uploads on local disk", zap.String("dir", settings.UploadsDir))
		return media.NewLocalStore(settings.UploadsDir)
	}

	log.Logger.Info("save uploads in s3",
		zap.String("endpoint", settings.S3Endpoint),
		zap.String("bucket", settings.S3Bucket))
	return media.NewS3Store(ctx, media.S3Config{
		Endpoint:  settings.S3Endpoint,
		AccessKey: settings.S3AccessKey,
		SecretKey: settings.S3SecretKey,
		Bucket:    settings.S3Bucket,
		Secure:    settings.S3Secure,
	})
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
