// Package config loads runtime settings into gconfig.Shared.
package config

import (
	"os"
	"path/filepath"

	"github.com/Laisky/blog-api/library/log"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"
)

// envBindings maps environment variables onto settings keys.
var envBindings = []struct {
	env string
	key string
}{
	{"NODE_ENV", KeyEnv},
	{"APP_ENV", KeyEnv},
	{"JWT_SECRET", KeySecret},
	{"MONGO_URI", KeyMongoURI},
	{"MONGO_DB", KeyMongoDB},
	{"UPLOADS_DIR", KeyUploadsDir},
	{"REDIS_ADDR", KeyRedisAddr},
	{"PORT", KeyListenPort},
}

// LoadFromFile loads yaml settings from cfgPath.
func LoadFromFile(cfgPath string) {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// LoadDotEnv reads envFile into the process environment if it exists.
// Variables already set are not overridden.
func LoadDotEnv(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %q", envFile)
	}

	if err := godotenv.Load(envFile); err != nil {
		return errors.Wrapf(err, "load %q", envFile)
	}

	log.Logger.Info("load dotenv", zap.String("file", envFile))
	return nil
}

// ApplyEnv copies known environment variables into gconfig.Shared.
// Later bindings for the same key win, so APP_ENV overrides NODE_ENV.
func ApplyEnv() {
	applyEnv(os.LookupEnv, gconfig.Shared.Set)
}

func applyEnv(lookup func(string) (string, bool), set func(string, any)) {
	seen := map[string]bool{}
	for i := len(envBindings) - 1; i >= 0; i-- {
		b := envBindings[i]
		if seen[b.key] {
			continue
		}

		v, ok := lookup(b.env)
		if !ok || v == "" {
			continue
		}

		seen[b.key] = true
		if b.key == KeyListenPort {
			set("listen", "0.0.0.0:"+v)
			continue
		}

		set(b.key, v)
	}
}
