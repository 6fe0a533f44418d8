// Package auth carries the signed-in user through HTTP requests.
//
// The browser holds one gorilla/sessions cookie that stores only the opaque
// session token. Every request resolves that token against the server-side
// session registry, so revoking a user or closing a session takes effect on
// the next request.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// DefaultSessionName is the cookie name when none is configured.
const DefaultSessionName = "bulletin-session"

const tokenKey = "token"

// Resolver turns a session token into the signed-in user. It returns nil,
// nil when the token has no active session.
type Resolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we inject into r.Context() for the handlers.
type SessionUser struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Status string
	Token  string
}

// ObjectID returns the user's id, or primitive.NilObjectID if ID is not a valid hex id.
func (u *SessionUser) ObjectID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool { return strings.EqualFold(u.Role, models.RoleAdmin) }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser places u in the request context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the token resolver.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	resolver Resolver
	log      *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true), cookies are Secure + SameSite=None (for
// cross-site use with HTTPS). In local dev over http://localhost, use
// secure=false so cookies are accepted (SameSite=Lax).
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, resolver Resolver, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, resolver: resolver, log: logger}, nil
}

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// Token returns the session token carried by the request's cookie, or "".
// A cookie that fails signature checks is treated as absent.
func (sm *SessionManager) Token(r *http.Request) string {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			sm.log.Debug("ignoring undecodable session cookie", zap.Error(err))
		}
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// SetToken writes the session cookie carrying token.
func (sm *SessionManager) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser resolves the cookie's token and injects the user into
// context. A token without an active session clears the cookie.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sm.Token(r)
		if token == "" || sm.resolver == nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := sm.resolver.ResolveSession(r.Context(), token)
		if err != nil {
			sm.log.Error("resolve session failed", zap.Error(err))
			status, kind := http.StatusServiceUnavailable, "store_unavailable"
			if errors.Is(err, errs.ErrTimeout) {
				status, kind = http.StatusGatewayTimeout, "timeout"
			}
			writeError(w, status, kind, "session lookup failed")
			return
		}
		if u == nil {
			if err := sm.Clear(w, r); err != nil {
				sm.log.Warn("could not clear stale session cookie", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		r = withUser(r, &SessionUser{
			ID:     u.ID.Hex(),
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
			Status: u.Status,
			Token:  token,
		})
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn responds 401 unless LoadSessionUser placed a user in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
	})
}

// RequireRole responds 401 without a user and 403 when the user's role is
// not one of allowed (compared case-insensitively).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeError(w, http.StatusForbidden, "forbidden", "your role cannot access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// writeError matches the {"error", "kind"} body of features/errors, which
// this package cannot import.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": kind})
}
