// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// Bulletin creates the administrator account when a password is configured,
// subscribes the session event log and starts the session cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc := deps.services

	svc.Identity.OnSessionChange(identity.LogSessionEvents(logger.Named("sessions")))

	if appCfg.AdminPassword != "" {
		created, err := svc.Identity.EnsureAdmin(ctx, appCfg.AdminName, appCfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if created {
			logger.Info("administrator account created", zap.String("email", appCfg.AdminEmail))
		}
	}

	// Redis expires sessions itself.
	if appCfg.SessionBackend == SessionBackendMongo {
		svc.cleanup = workers.NewSessionCleanup(svc.Identity, logger, appCfg.SessionCleanupInterval, 0)
		svc.cleanup.Start()
	}

	return nil
}
