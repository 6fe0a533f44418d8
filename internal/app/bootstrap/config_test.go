package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:               "mongodb://localhost:27017",
		MongoDatabase:          "bulletin",
		SessionKey:             "a-production-grade-session-key-0123456789",
		SessionTTL:             24 * time.Hour,
		SessionBackend:         SessionBackendMongo,
		SessionCleanupInterval: time.Minute,
		AdminEmail:             "admin@example.com",
		StatusPolicy:           "revocable",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", "dev", func(*AppConfig) {}, ""},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "" }, "MongoDB URI"},
		{"missing admin email", "dev", func(c *AppConfig) { c.AdminEmail = "" }, "admin_email"},
		{"invalid admin email", "dev", func(c *AppConfig) { c.AdminEmail = "not-an-email" }, "admin_email"},
		{"unknown policy", "dev", func(c *AppConfig) { c.StatusPolicy = "lenient" }, "status policy"},
		{"empty policy means default", "dev", func(c *AppConfig) { c.StatusPolicy = "" }, ""},
		{"redis backend", "dev", func(c *AppConfig) { c.SessionBackend = SessionBackendRedis; c.RedisAddr = "localhost:6379" }, ""},
		{"redis without addr", "dev", func(c *AppConfig) { c.SessionBackend = SessionBackendRedis }, "redis_addr"},
		{"unknown backend", "dev", func(c *AppConfig) { c.SessionBackend = "memcached" }, "session_backend"},
		{"zero ttl", "dev", func(c *AppConfig) { c.SessionTTL = 0 }, "session_ttl"},
		{"zero cleanup interval", "dev", func(c *AppConfig) { c.SessionCleanupInterval = 0 }, "session_cleanup_interval"},
		{"dev key in prod", "prod", func(c *AppConfig) { c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF" }, "session_key"},
		{"dev key in dev", "dev", func(c *AppConfig) { c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("expected error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
