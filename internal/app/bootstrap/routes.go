// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	announcementsfeature "github.com/dalemusser/bulletin/internal/app/features/announcements"
	consistencyfeature "github.com/dalemusser/bulletin/internal/app/features/consistency"
	dashboardfeature "github.com/dalemusser/bulletin/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/bulletin/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/bulletin/internal/app/features/groups"
	healthfeature "github.com/dalemusser/bulletin/internal/app/features/health"
	loginfeature "github.com/dalemusser/bulletin/internal/app/features/login"
	logoutfeature "github.com/dalemusser/bulletin/internal/app/features/logout"
	membersfeature "github.com/dalemusser/bulletin/internal/app/features/members"
	profilefeature "github.com/dalemusser/bulletin/internal/app/features/profile"
	"github.com/dalemusser/bulletin/internal/app/feed"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"github.com/dalemusser/bulletin/internal/app/system/ratelimit"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.services

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionTTL, secure, svc.Identity, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	rd := routerDeps{
		Identity:   svc.Identity,
		Membership: svc.Membership,
		Feed:       svc.Feed,
		Sessions:   sessionMgr,
		Limiter:    ratelimit.NewLoginLimiter(),
		DBPing: healthfeature.PingFunc(func(ctx context.Context) error {
			return deps.MongoClient.Ping(ctx, nil)
		}),
	}
	if deps.Redis != nil {
		rd.SessionPing = healthfeature.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}

	return newRouter(rd, logger), nil
}

// routerDeps is everything the router needs, independent of how the
// backends were connected.
type routerDeps struct {
	Identity   *identity.Manager
	Membership *membership.Service
	Feed       *feed.Service
	Sessions   *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter

	DBPing      healthfeature.Pinger
	SessionPing healthfeature.Pinger // nil when sessions live in MongoDB
}

func newRouter(rd routerDeps, logger *zap.Logger) chi.Router {
	errLog := errorsfeature.NewErrorLogger(logger)
	sm := rd.Sessions

	r := chi.NewRouter()

	// JSON bodies for unmatched paths and methods.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sm.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(rd.DBPing, rd.SessionPing, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(rd.Identity, sm, rd.Limiter, errLog, logger)
	loginfeature.MountRoutes(r, loginHandler)

	logoutHandler := logoutfeature.NewHandler(rd.Identity, sm, errLog, logger)
	logoutfeature.MountRoutes(r, logoutHandler)

	profileHandler := profilefeature.NewHandler(rd.Identity, rd.Membership, errLog, logger)
	r.Mount("/me", profilefeature.Routes(profileHandler, sm))

	groupsHandler := groupsfeature.NewHandler(rd.Membership, errLog, logger)
	annHandler := announcementsfeature.NewHandler(rd.Feed, rd.Membership, errLog, logger)

	// Administrator
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))

		dashboardHandler := dashboardfeature.NewHandler(rd.Membership, errLog, logger)
		ar.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		membersHandler := membersfeature.NewHandler(rd.Membership, errLog, logger)
		ar.Mount("/users", membersfeature.Routes(membersHandler))

		gr := groupsfeature.AdminRoutes(groupsHandler)
		announcementsfeature.MountAdminRoutes(gr, annHandler)
		ar.Mount("/groups", gr)

		consistencyHandler := consistencyfeature.NewHandler(rd.Membership, errLog, logger)
		ar.Mount("/consistency", consistencyfeature.Routes(consistencyHandler))
	})

	// Student
	r.Route("/student", func(sr chi.Router) {
		sr.Use(sm.RequireRole(models.RoleStudent))
		groupsfeature.MountStudentRoutes(sr, groupsHandler)
		announcementsfeature.MountStudentRoutes(sr, annHandler)
	})

	return r
}
