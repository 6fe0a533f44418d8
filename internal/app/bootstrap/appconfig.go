// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). Framework-level settings such
// as ports, TLS, logging and CORS live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: bulletin-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // Lifetime of a server-side session

	// Session registry: "mongo" keeps sessions in the sessions collection,
	// "redis" keeps them in Redis with a native TTL.
	SessionBackend         string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	SessionCleanupInterval time.Duration

	// Administrator bootstrap. Whoever registers with AdminEmail becomes the
	// administrator; when AdminPassword is set the account is created at startup.
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// StatusPolicy is strict, revocable or permissive.
	StatusPolicy string

	// Store call bounds
	StoreTimeoutShort  time.Duration
	StoreTimeoutMedium time.Duration
	StoreTimeoutLong   time.Duration
	StoreRetryAttempts int
	StoreRetryBackoff  time.Duration
}
