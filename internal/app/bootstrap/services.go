// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/bulletin/internal/app/feed"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/membership"
	announcementstore "github.com/dalemusser/bulletin/internal/app/store/announcements"
	credentialstore "github.com/dalemusser/bulletin/internal/app/store/credentials"
	groupstore "github.com/dalemusser/bulletin/internal/app/store/groups"
	membershipstore "github.com/dalemusser/bulletin/internal/app/store/memberships"
	"github.com/dalemusser/bulletin/internal/app/store/redissessions"
	sessionstore "github.com/dalemusser/bulletin/internal/app/store/sessions"
	userstore "github.com/dalemusser/bulletin/internal/app/store/users"
	"github.com/dalemusser/bulletin/internal/app/system/txn"
	"github.com/dalemusser/bulletin/internal/app/system/workers"
	"go.uber.org/zap"
)

// services are the domain services shared by Startup, BuildHandler and
// Shutdown.
type services struct {
	Identity   *identity.Manager
	Membership *membership.Service
	Feed       *feed.Service

	// cleanup is started in Startup for the Mongo session backend.
	cleanup *workers.SessionCleanup
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	db := deps.MongoDatabase
	tx := txn.New(deps.MongoClient, logger)

	users := userstore.New(db)
	groups := groupstore.New(db)
	edges := membershipstore.New(db)

	var sessions identity.SessionStore = sessionstore.New(db)
	if deps.Redis != nil {
		sessions = redissessions.New(deps.Redis)
	}

	// ValidateConfig has already rejected an unknown policy.
	policy, _ := membership.ParsePolicy(appCfg.StatusPolicy)

	return &services{
		Identity: identity.New(users, credentialstore.New(db), sessions, edges, tx, identity.Config{
			AdminEmail: appCfg.AdminEmail,
			SessionTTL: appCfg.SessionTTL,
		}, logger.Named("identity")),
		Membership: membership.New(users, groups, edges, tx, policy, logger.Named("membership")),
		Feed:       feed.New(announcementstore.New(db), groups, edges, logger.Named("feed")),
	}
}
