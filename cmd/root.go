package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Laisky/blog-api/library/config"
	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gutils "github.com/Laisky/go-utils/v6"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "/etc/blog-api/settings.yml"

var rootCMD = &cobra.Command{
	Use:   "blog-api",
	Short: "blog-api",
	Long:  `REST API service for the blog`,
	Args:  gcmd.NoExtraArgs,
}

// initialize loads configuration and returns the validated settings.
func initialize(ctx context.Context, cmd *cobra.Command) (*config.Settings, error) {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "bind pflags")
	}

	if err := setupSettings(ctx, cmd); err != nil {
		return nil, errors.Wrap(err, "setup settings")
	}
	if err := setupLogger(ctx); err != nil {
		return nil, errors.Wrap(err, "setup logger")
	}
	if err := validateStartupConfig(); err != nil {
		return nil, errors.Wrap(err, "validate startup config")
	}

	settings := config.FromGetter(gconfig.Shared.Get)
	if settings.InsecureAuth {
		log.Logger.Warn("no secret configured, sign tokens with the development secret")
	} else if settings.WeakSecret() {
		log.Logger.Warn("secret is short, use a longer random secret")
	}

	log.Logger.Info("initialized",
		zap.String("env", settings.Env),
		zap.String("mongo_db", settings.MongoDB),
		zap.Bool("redis", settings.RedisAddr != ""),
		zap.Bool("s3", settings.S3Endpoint != ""))
	return settings, nil
}

func setupSettings(ctx context.Context, cmd *cobra.Command) error {
	// mode
	if gconfig.Shared.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	} else { // prod mode
		fmt.Println("run in prod mode")
	}

	// clock
	gutils.SetInternalClock(100 * time.Millisecond)

	if err := config.LoadDotEnv(gconfig.Shared.GetString("env-file")); err != nil {
		return errors.Wrap(err, "load dotenv")
	}

	// the default config file is optional, an explicit one is not
	cfgPath := gconfig.Shared.GetString("config")
	if _, err := os.Stat(cfgPath); err == nil || cmd.Flags().Changed("config") {
		config.LoadFromFile(cfgPath)
	}

	config.ApplyEnv()
	return nil
}

func setupLogger(ctx context.Context) error {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		return errors.Wrapf(err, "change log level to %q", lvl)
	}

	return nil
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", config.DefaultListen, "like `localhost:5000`")
	rootCMD.PersistentFlags().StringP("config", "c", defaultConfigPath, "config file path")
	rootCMD.PersistentFlags().String("env-file", ".env", "dotenv file path")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		glog.Shared.Panic("start", zap.Error(err))
	}
}
