package config

import (
	"strings"
	"time"
)

// Settings keys.
const (
	KeyEnv        = "settings.env"
	KeySecret     = "settings.secret"
	KeyMongoURI   = "settings.db.blog.uri"
	KeyMongoAddr  = "settings.db.blog.addr"
	KeyMongoDB    = "settings.db.blog.db"
	KeyMongoUser  = "settings.db.blog.user"
	KeyMongoPwd   = "settings.db.blog.pwd"
	KeyRedisAddr  = "settings.db.redis.addr"
	KeyRedisPwd   = "settings.db.redis.pwd"
	KeyRedisDB    = "settings.db.redis.db"
	KeyUploadsDir = "settings.uploads.dir"
	KeyUploadsMax = "settings.uploads.max_bytes"
	KeyS3Endpoint = "settings.uploads.s3.endpoint"
	KeyS3Access   = "settings.uploads.s3.access_key"
	KeyS3Secret   = "settings.uploads.s3.secret_key"
	KeyS3Bucket   = "settings.uploads.s3.bucket"
	KeyS3Secure   = "settings.uploads.s3.secure"
	KeyTokenTTL   = "settings.auth.token_ttl_hours"
	KeyLoginMax   = "settings.auth.login_max_failures"
	KeyLoginWin   = "settings.auth.login_failure_window_seconds"
	KeyCORS       = "settings.web.cors_origins"

	// KeyListenPort is a pseudo key, PORT is folded into "listen".
	KeyListenPort = "port"
)

// Defaults.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// DevSecret signs tokens when no secret is configured outside production.
	DevSecret = "mysecret"

	DefaultMongoDB        = "blog"
	DefaultUploadsDir     = "./uploads"
	DefaultUploadsMax     = 5 << 20
	DefaultTokenTTL       = 24 * time.Hour
	DefaultLoginMax       = 5
	DefaultLoginWindow    = 15 * time.Minute
	DefaultS3Bucket       = "uploads"
	DefaultListen         = "localhost:5000"
	defaultMongoAddr      = "localhost:27017"
	maxSecretWarnRuneSize = 16
)

// Getter reads one raw setting.
type Getter func(key string) any

// Settings is the validated startup configuration.
type Settings struct {
	Env          string
	Secret       string
	InsecureAuth bool

	MongoURI  string
	MongoAddr string
	MongoDB   string
	MongoUser string
	MongoPwd  string

	RedisAddr string
	RedisPwd  string
	RedisDB   int

	UploadsDir      string
	UploadsMaxBytes int64
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3Secure        bool

	TokenTTL        time.Duration
	LoginMaxFailure int
	LoginWindow     time.Duration
	CORSOrigins     []string
}

// IsProduction reports whether the service runs in production mode.
func (s *Settings) IsProduction() bool {
	return s.Env == EnvProduction
}

// WeakSecret reports whether a configured secret is too short to be trusted.
func (s *Settings) WeakSecret() bool {
	return !s.InsecureAuth && len([]rune(s.Secret)) < maxSecretWarnRuneSize
}

// FromGetter builds Settings from raw values, filling defaults.
// Values are expected to be validated already.
func FromGetter(get Getter) *Settings {
	s := &Settings{
		Env:         strings.ToLower(stringOf(get(KeyEnv))),
		Secret:      stringOf(get(KeySecret)),
		MongoURI:    stringOf(get(KeyMongoURI)),
		MongoAddr:   stringOf(get(KeyMongoAddr)),
		MongoDB:     stringOf(get(KeyMongoDB)),
		MongoUser:   stringOf(get(KeyMongoUser)),
		MongoPwd:    stringOf(get(KeyMongoPwd)),
		RedisAddr:   stringOf(get(KeyRedisAddr)),
		RedisPwd:    stringOf(get(KeyRedisPwd)),
		RedisDB:     intOf(get(KeyRedisDB)),
		UploadsDir:  stringOf(get(KeyUploadsDir)),
		S3Endpoint:  stringOf(get(KeyS3Endpoint)),
		S3AccessKey: stringOf(get(KeyS3Access)),
		S3SecretKey: stringOf(get(KeyS3Secret)),
		S3Bucket:    stringOf(get(KeyS3Bucket)),
		S3Secure:    boolOf(get(KeyS3Secure)),
		CORSOrigins: stringsOf(get(KeyCORS)),
	}

	if s.Env == "" {
		s.Env = EnvDevelopment
	}
	if s.Secret == "" {
		s.Secret = DevSecret
		s.InsecureAuth = true
	}
	if s.MongoDB == "" {
		s.MongoDB = DefaultMongoDB
	}
	if s.MongoURI == "" && s.MongoAddr == "" {
		s.MongoAddr = defaultMongoAddr
	}
	if s.UploadsDir == "" {
		s.UploadsDir = DefaultUploadsDir
	}
	if s.S3Bucket == "" {
		s.S3Bucket = DefaultS3Bucket
	}

	s.UploadsMaxBytes = int64(intOf(get(KeyUploadsMax)))
	if s.UploadsMaxBytes <= 0 {
		s.UploadsMaxBytes = DefaultUploadsMax
	}

	s.TokenTTL = time.Duration(intOf(get(KeyTokenTTL))) * time.Hour
	if s.TokenTTL <= 0 {
		s.TokenTTL = DefaultTokenTTL
	}

	s.LoginMaxFailure = intOf(get(KeyLoginMax))
	if s.LoginMaxFailure <= 0 {
		s.LoginMaxFailure = DefaultLoginMax
	}

	s.LoginWindow = time.Duration(intOf(get(KeyLoginWin))) * time.Second
	if s.LoginWindow <= 0 {
		s.LoginWindow = DefaultLoginWindow
	}

	return s
}

func stringOf(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func boolOf(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case uint:
		return int(n)
	default:
		return 0
	}
}

func stringsOf(v any) []string {
	var raw []string
	switch vs := v.(type) {
	case []string:
		raw = vs
	case []any:
		for _, item := range vs {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(vs, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
