// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/bulletin/internal/app/membership"
	"github.com/dalemusser/bulletin/internal/app/system/inputval"
	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Session registry backends.
const (
	SessionBackendMongo = "mongo"
	SessionBackendRedis = "redis"
)

// appConfigKeys defines the configuration keys for Bulletin.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: BULLETIN_MONGO_URI, BULLETIN_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bulletin", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "bulletin-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session lifetime (e.g., 24h, 90m)"},

	// Session registry
	{Name: "session_backend", Default: SessionBackendMongo, Desc: "Session registry: 'mongo' or 'redis'"},
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address (session_backend=redis)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "session_cleanup_interval", Default: "5m", Desc: "How often expired Mongo sessions are closed"},

	// Administrator
	{Name: "admin_email", Default: "", Desc: "Email that registers as the administrator"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name used when the admin is created at startup"},
	{Name: "admin_password", Default: "", Desc: "If set, create the admin account at startup when it does not exist"},

	{Name: "status_policy", Default: string(membership.DefaultPolicy), Desc: "Approval status policy: strict, revocable or permissive"},

	// Store call bounds
	{Name: "store_timeout_short", Default: "5s", Desc: "Timeout for single-document store calls"},
	{Name: "store_timeout_medium", Default: "10s", Desc: "Timeout for list and multi-call operations"},
	{Name: "store_timeout_long", Default: "30s", Desc: "Timeout for scans and cascades"},
	{Name: "store_retry_attempts", Default: 3, Desc: "Total tries for idempotent store calls when the store is unavailable"},
	{Name: "store_retry_backoff", Default: "100ms", Desc: "Wait before the first retry; doubles afterwards"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// BULLETIN_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BULLETIN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),

		SessionBackend:         strings.ToLower(strings.TrimSpace(appValues.String("session_backend"))),
		RedisAddr:              appValues.String("redis_addr"),
		RedisPassword:          appValues.String("redis_password"),
		RedisDB:                appValues.Int("redis_db"),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", 5*time.Minute),

		AdminEmail:    normalize.Email(appValues.String("admin_email")),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),

		StatusPolicy: appValues.String("status_policy"),

		StoreTimeoutShort:  appValues.Duration("store_timeout_short", 5*time.Second),
		StoreTimeoutMedium: appValues.Duration("store_timeout_medium", 10*time.Second),
		StoreTimeoutLong:   appValues.Duration("store_timeout_long", 30*time.Second),
		StoreRetryAttempts: appValues.Int("store_retry_attempts"),
		StoreRetryBackoff:  appValues.Duration("store_retry_backoff", 100*time.Millisecond),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The checks run before anything connects, so a typo fails fast.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AdminEmail == "" {
		return fmt.Errorf("admin_email is required")
	}
	if err := inputval.Var(appCfg.AdminEmail, "email"); err != nil {
		return fmt.Errorf("admin_email %q is not a valid email address", appCfg.AdminEmail)
	}

	if _, err := membership.ParsePolicy(appCfg.StatusPolicy); err != nil {
		return err
	}

	switch appCfg.SessionBackend {
	case SessionBackendMongo:
	case SessionBackendRedis:
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("session_backend=redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown session_backend %q (want mongo or redis)", appCfg.SessionBackend)
	}

	if appCfg.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if appCfg.SessionCleanupInterval <= 0 {
		return fmt.Errorf("session_cleanup_interval must be positive")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be changed from the development default in prod")
	}

	return nil
}
