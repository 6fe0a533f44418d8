// Package identity registers users, verifies credentials and manages the
// server-side sessions that the HTTP layer resolves on every request.
//
// A user's credential and user record share one id. Students start pending
// and cannot hold a session until an administrator approves them; the one
// administrator is whoever registers with the configured admin email.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/authutil"
	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/app/system/retry"
	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"github.com/dalemusser/bulletin/internal/app/system/txn"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the slice of store/users the manager needs.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CredentialStore is the identity provider's record store.
type CredentialStore interface {
	Create(ctx context.Context, c models.Credential) error
	GetByEmail(ctx context.Context, email string) (models.Credential, error)
	UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionStore is the session registry (MongoDB or Redis).
type SessionStore interface {
	Create(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (models.Session, error)
	GetByToken(ctx context.Context, token string) (models.Session, error)
	Touch(ctx context.Context, token string, at time.Time) error
	Close(ctx context.Context, token, reason string) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// MembershipReader derives a user's groups from the membership edges.
type MembershipReader interface {
	GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// DefaultSessionTTL applies when Config.SessionTTL is zero.
const DefaultSessionTTL = 24 * time.Hour

// Config holds the identity settings.
type Config struct {
	AdminEmail string
	SessionTTL time.Duration
}

// Manager implements registration, login, logout and session resolution.
type Manager struct {
	users       UserStore
	creds       CredentialStore
	sessions    SessionStore
	memberships MembershipReader
	tx          txn.Runner
	log         *zap.Logger

	adminEmail string
	ttl        time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	listeners []func(SessionEvent)
}

// New creates a Manager. A nil tx runs multi-document writes without a transaction.
func New(users UserStore, creds CredentialStore, sessions SessionStore, memberships MembershipReader, tx txn.Runner, cfg Config, logger *zap.Logger) *Manager {
	if tx == nil {
		tx = txn.Direct{}
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		users:       users,
		creds:       creds,
		sessions:    sessions,
		memberships: memberships,
		tx:          tx,
		log:         logger,
		adminEmail:  normalize.Email(cfg.AdminEmail),
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AdminEmail returns the normalized admin email.
func (m *Manager) AdminEmail() string { return m.adminEmail }

// Register creates a credential and a user with the same id.
func (m *Manager) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = normalize.Name(name)
	email = normalize.Email(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, fmt.Errorf("%w: name, email and password are required", errs.ErrInvalidInput)
	}
	if !authutil.ValidEmail(email) {
		return models.User{}, fmt.Errorf("%w: %q is not a valid email address", errs.ErrInvalidInput, email)
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", errs.ErrInvalidInput, err)
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:     primitive.NewObjectID(),
		Name:   name,
		Email:  email,
		Role:   models.RoleStudent,
		Status: models.StatusPending,
	}
	if m.isAdminEmail(email) {
		u.Role = models.RoleAdmin
		u.Status = models.StatusApproved
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), m.log, "identity.register")
	defer cancel()

	var created models.User
	err = m.tx.Run(ctx, func(ctx context.Context) error {
		if err := m.creds.Create(ctx, models.Credential{ID: u.ID, Email: email, PasswordHash: hash}); err != nil {
			return err
		}
		var err error
		created, err = m.users.Create(ctx, u)
		if err != nil {
			// Outside a transaction the credential is already committed.
			if derr := m.creds.Delete(ctx, u.ID); derr != nil {
				m.log.Warn("could not remove credential after failed user insert",
					zap.String("user_id", u.ID.Hex()), zap.Error(derr))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("register %s: %w", email, errs.FromStore(err))
	}

	created.GroupIDs = []primitive.ObjectID{}
	m.log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role),
		zap.String("status", created.Status))
	return created, nil
}

// EnsureAdmin registers the admin account with password if no credential
// exists for the admin email yet. It reports whether an account was created.
func (m *Manager) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	if m.adminEmail == "" {
		return false, fmt.Errorf("%w: admin email is not configured", errs.ErrInvalidInput)
	}

	lookupCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), m.log, "identity.ensure_admin")
	_, err := m.creds.GetByEmail(lookupCtx, m.adminEmail)
	cancel()
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, errs.ErrNotFound):
		return false, fmt.Errorf("look up admin credential: %w", err)
	}

	if _, err := m.Register(ctx, name, m.adminEmail, password); err != nil {
		if errors.Is(err, errs.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Login verifies email and password and opens a session.
func (m *Manager) Login(ctx context.Context, email, password string) (models.User, models.Session, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return models.User{}, models.Session{}, errs.ErrInvalidCredentials
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), m.log, "identity.login")
	defer cancel()

	var cred models.Credential
	err := retry.Do(ctx, m.log, "credentials.get_by_email", func(ctx context.Context) error {
		var err error
		cred, err = m.creds.GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return models.User{}, models.Session{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("login: %w", err)
	}
	if !authutil.CheckPassword(password, cred.PasswordHash) {
		return models.User{}, models.Session{}, errs.ErrInvalidCredentials
	}

	u, err := m.loadUser(ctx, cred.ID)
	if errors.Is(err, errs.ErrNotFound) {
		m.log.Warn("credential without user record", zap.String("user_id", cred.ID.Hex()))
		return models.User{}, models.Session{}, errs.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("login: %w", err)
	}
	if !u.CanSignIn() {
		return models.User{}, models.Session{}, errs.ErrPendingApproval
	}
	if err := m.withGroups(ctx, &u); err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("login: %w", err)
	}

	sess, err := m.sessions.Create(ctx, u.ID, m.ttl)
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("create session: %w", err)
	}

	m.log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	m.emit(SessionEvent{Kind: EventLogin, UserID: u.ID, SessionID: sess.ID, At: sess.CreatedAt})
	return u, sess, nil
}

// Logout closes the session for token. Unknown, closed and empty tokens succeed.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), m.log, "identity.logout")
	defer cancel()

	sess, err := m.sessions.GetByToken(ctx, token)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if sess.ClosedAt != nil {
		return nil
	}
	if err := m.sessions.Close(ctx, token, models.EndLogout); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.emit(SessionEvent{Kind: EventLogout, UserID: sess.UserID, SessionID: sess.ID, At: m.now()})
	return nil
}

// ResolveSession returns the signed-in user for token, or nil when there is
// no active session. A session whose user is no longer allowed to sign in
// is closed on the way.
func (m *Manager) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), m.log, "identity.resolve_session")
	defer cancel()

	var sess models.Session
	err := retry.Do(ctx, m.log, "sessions.get_by_token", func(ctx context.Context) error {
		var err error
		sess, err = m.sessions.GetByToken(ctx, token)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if sess.ClosedAt != nil {
		return nil, nil
	}

	now := m.now()
	if !sess.Active(now) {
		m.end(ctx, sess, models.EndExpired, EventExpired)
		return nil, nil
	}

	u, err := m.loadUser(ctx, sess.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		m.end(ctx, sess, models.EndRevoked, EventRevoked)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !u.CanSignIn() {
		m.end(ctx, sess, models.EndRevoked, EventRevoked)
		return nil, nil
	}
	if err := m.withGroups(ctx, &u); err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if err := m.sessions.Touch(ctx, token, now); err != nil {
		m.log.Warn("could not refresh session activity", zap.String("session_id", sess.ID.Hex()), zap.Error(err))
	}
	return &u, nil
}

// UpdateProfile changes the user's name and sign-in email.
func (m *Manager) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email string) (models.User, error) {
	name = normalize.Name(name)
	email = normalize.Email(email)
	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("%w: name and email are required", errs.ErrInvalidInput)
	}
	if !authutil.ValidEmail(email) {
		return models.User{}, fmt.Errorf("%w: %q is not a valid email address", errs.ErrInvalidInput, email)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), m.log, "identity.update_profile")
	defer cancel()

	u, err := m.loadUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	if u.IsAdmin() && email != u.Email {
		return models.User{}, fmt.Errorf("%w: the administrator email cannot be changed", errs.ErrInvalidInput)
	}
	if !u.IsAdmin() && m.isAdminEmail(email) {
		return models.User{}, fmt.Errorf("%w: this email is reserved", errs.ErrInvalidInput)
	}

	oldEmail := u.Email
	err = m.tx.Run(ctx, func(ctx context.Context) error {
		if email != oldEmail {
			if err := m.creds.UpdateEmail(ctx, userID, email); err != nil {
				return err
			}
		}
		if err := m.users.UpdateProfile(ctx, userID, name, email); err != nil {
			if email != oldEmail {
				if rerr := m.creds.UpdateEmail(ctx, userID, oldEmail); rerr != nil {
					m.log.Warn("could not restore credential email",
						zap.String("user_id", userID.Hex()), zap.Error(rerr))
				}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", errs.FromStore(err))
	}

	updated, err := m.loadUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	if err := m.withGroups(ctx, &updated); err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// ExpireSessions closes every session past its expiry. The cleanup worker calls it.
func (m *Manager) ExpireSessions(ctx context.Context) (int64, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), m.log, "identity.expire_sessions")
	defer cancel()
	return m.sessions.CloseExpired(ctx, m.now())
}

func (m *Manager) loadUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := retry.Do(ctx, m.log, "users.get_by_id", func(ctx context.Context) error {
		var err error
		u, err = m.users.GetByID(ctx, id)
		return err
	})
	return u, err
}

// withGroups fills u.GroupIDs from the membership edges; never nil.
func (m *Manager) withGroups(ctx context.Context, u *models.User) error {
	return retry.Do(ctx, m.log, "memberships.group_ids_for_user", func(ctx context.Context) error {
		ids, err := m.memberships.GroupIDsForUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		u.GroupIDs = ids
		return nil
	})
}

func (m *Manager) end(ctx context.Context, sess models.Session, reason, kind string) {
	if err := m.sessions.Close(ctx, sess.Token, reason); err != nil {
		m.log.Warn("could not close session",
			zap.String("session_id", sess.ID.Hex()),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	m.emit(SessionEvent{Kind: kind, UserID: sess.UserID, SessionID: sess.ID, At: m.now()})
}

func (m *Manager) isAdminEmail(email string) bool {
	return m.adminEmail != "" && email == m.adminEmail
}
