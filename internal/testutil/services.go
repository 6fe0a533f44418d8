package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/bulletin/internal/app/feed"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"github.com/dalemusser/bulletin/internal/app/store/memstore"
	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"github.com/dalemusser/bulletin/internal/app/system/authutil"
	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminEmail is the administrator address used by NewServices.
const AdminEmail = "admin@example.com"

// AdminPassword is the administrator's password in NewServices.
const AdminPassword = "admin-password"

// Services wires the domain services over an in-memory store.
type Services struct {
	DB         *memstore.DB
	Identity   *identity.Manager
	Membership *membership.Service
	Feed       *feed.Service
	Admin      models.User
}

// NewServices builds the services over a fresh memstore with a registered
// administrator and the revocable status policy.
func NewServices(t *testing.T) *Services {
	t.Helper()
	authutil.BcryptCost = 4

	db := memstore.New()
	logger := zap.NewNop()
	s := &Services{
		DB:         db,
		Identity:   identity.New(db.Users, db.Credentials, db.Sessions, db.Memberships, nil, identity.Config{AdminEmail: AdminEmail}, logger),
		Membership: membership.New(db.Users, db.Groups, db.Memberships, nil, membership.PolicyRevocable, logger),
		Feed:       feed.New(db.Announcements, db.Groups, db.Memberships, logger),
	}

	admin, err := s.Identity.Register(context.Background(), "Admin", AdminEmail, AdminPassword)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	s.Admin = admin
	return s
}

// Student places a student directly in the user table, bypassing registration.
func (s *Services) Student(name, email, status string) models.User {
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     normalize.Email(email),
		Role:      models.RoleStudent,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.DB.Users.Put(u)
	return u
}

// Group creates a group through the membership service.
func (s *Services) Group(t *testing.T, name string) models.Group {
	t.Helper()
	g, err := s.Membership.CreateGroup(context.Background(), name)
	if err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return g
}

// SessionManager returns a cookie session manager that resolves tokens
// through s.Identity.
func (s *Services) SessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", 24*time.Hour, false, s.Identity, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

// Approved registers a student through the identity manager and approves it,
// so that it can sign in with password.
func (s *Services) Approved(t *testing.T, name, email, password string) models.User {
	t.Helper()
	ctx := context.Background()
	u, err := s.Identity.Register(ctx, name, email, password)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if err := s.Membership.SetUserStatus(ctx, u.ID, models.StatusApproved); err != nil {
		t.Fatalf("approve %s: %v", email, err)
	}
	u.Status = models.StatusApproved
	return u
}
