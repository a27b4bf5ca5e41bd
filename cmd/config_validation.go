package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Laisky/blog-api/library/config"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

var knownEnvs = []string{config.EnvProduction, config.EnvDevelopment, "test"}

// validateStartupConfig validates startup configuration from the shared config source.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.Shared.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateEnvConfig(get, &validationErrs)
	validateMongoConfig(get, &validationErrs)
	validateRedisConfig(get, &validationErrs)
	validateUploadsConfig(get, &validationErrs)
	validateAuthConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)
	validateProductionConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

func validateEnvConfig(get configGetter, errs *[]string) {
	raw := get(config.KeyEnv)
	if raw == nil {
		return
	}

	env, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", config.KeyEnv)
		return
	}

	env = strings.ToLower(strings.TrimSpace(env))
	for _, known := range knownEnvs {
		if env == known {
			return
		}
	}

	appendValidationError(errs, "%s must be one of [%s]", config.KeyEnv, strings.Join(knownEnvs, ", "))
}

func validateMongoConfig(get configGetter, errs *[]string) {
	validateOptionalMongoURI(get, config.KeyMongoURI, errs)
	validateOptionalStringNonEmpty(get, config.KeyMongoDB, errs)
}

// validateRedisConfig validates redis-related startup configuration values.
func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, config.KeyRedisDB, 0, errs)
}

// validateUploadsConfig validates upload storage settings.
func validateUploadsConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, config.KeyUploadsDir, errs)
	validateOptionalInt64Min(get, config.KeyUploadsMax, 1, errs)
	validateOptionalBool(get, config.KeyS3Secure, errs)
	validateOptionalStringNonEmpty(get, config.KeyS3Bucket, errs)

	endpoint := get(config.KeyS3Endpoint)
	if endpoint == nil {
		return
	}
	if host, parseErr := parseStrictString(endpoint); parseErr != nil || !isValidHost(host) {
		appendValidationError(errs, "%s must be a host without scheme", config.KeyS3Endpoint)
		return
	}

	for _, key := range []string{config.KeyS3Access, config.KeyS3Secret} {
		raw := get(key)
		if raw == nil {
			appendValidationError(errs, "%s is required when %s is set", key, config.KeyS3Endpoint)
			continue
		}
		if text, parseErr := parseStrictString(raw); parseErr != nil || strings.TrimSpace(text) == "" {
			appendValidationError(errs, "%s must be a non-empty string", key)
		}
	}
}

// validateAuthConfig validates token and login throttle settings.
func validateAuthConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, config.KeyTokenTTL, 1, errs)
	validateOptionalIntMin(get, config.KeyLoginMax, 1, errs)
	validateOptionalIntMin(get, config.KeyLoginWin, 1, errs)
}

// validateWebConfig validates allowed CORS origins.
func validateWebConfig(get configGetter, errs *[]string) {
	raw := get(config.KeyCORS)
	if raw == nil {
		return
	}

	var origins []string
	switch v := raw.(type) {
	case string:
		origins = strings.Split(v, ",")
	case []string:
		origins = v
	case []any:
		for _, item := range v {
			origin, parseErr := parseStrictString(item)
			if parseErr != nil {
				appendValidationError(errs, "%s must be a list of strings", config.KeyCORS)
				return
			}
			origins = append(origins, origin)
		}
	default:
		appendValidationError(errs, "%s must be a list of origins", config.KeyCORS)
		return
	}

	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if !isValidOrigin(origin) {
			appendValidationError(errs, "%s contains invalid origin %q", config.KeyCORS, origin)
		}
	}
}

// validateProductionConfig refuses to start production without
// a signing secret or a database location.
func validateProductionConfig(get configGetter, errs *[]string) {
	env, _ := parseStrictString(get(config.KeyEnv))
	if strings.ToLower(strings.TrimSpace(env)) != config.EnvProduction {
		return
	}

	secret, _ := parseStrictString(get(config.KeySecret))
	if strings.TrimSpace(secret) == "" {
		appendValidationError(errs, "%s is required in production", config.KeySecret)
	}

	uri, _ := parseStrictString(get(config.KeyMongoURI))
	addr, _ := parseStrictString(get(config.KeyMongoAddr))
	if strings.TrimSpace(uri) == "" && strings.TrimSpace(addr) == "" {
		appendValidationError(errs, "%s or %s is required in production",
			config.KeyMongoURI, config.KeyMongoAddr)
	}
}

// validateOptionalBool validates an optionally configured boolean key.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalInt64Min validates an optionally configured int64 key with a minimum constraint.
func validateOptionalInt64Min(get configGetter, key string, min int64, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt64(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalMongoURI validates an optionally configured mongodb connection string.
func validateOptionalMongoURI(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URI", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" ||
		(parsed.Scheme != "mongodb" && parsed.Scheme != "mongodb+srv") {
		appendValidationError(errs, "%s must be a mongodb:// or mongodb+srv:// URI", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictInt64 parses a value as a strict int64.
func parseStrictInt64(value any) (int64, error) {
	parsed, err := parseStrictInt(value)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int64(parsed), nil
}

// parseStrictString parses a value as a strict string.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost validates a host string without scheme or path components.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// isValidOrigin accepts "*" or an absolute http(s) origin without path.
func isValidOrigin(origin string) bool {
	if origin == "*" {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	return parsed.Path == "" || parsed.Path == "/"
}

// appendValidationError appends a formatted validation error to the collector.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
