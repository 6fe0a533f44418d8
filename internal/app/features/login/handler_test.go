package login_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/features/login"
	"github.com/dalemusser/bulletin/internal/app/system/ratelimit"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, svc *testutil.Services, limiter *ratelimit.LoginLimiter) chi.Router {
	t.Helper()
	h := login.NewHandler(svc.Identity, svc.SessionManager(t), limiter, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	login.MountRoutes(r, h)
	return r
}

func TestRegister(t *testing.T) {
	svc := testutil.NewServices(t)
	r := newRouter(t, svc, nil)

	tests := []struct {
		name   string
		body   any
		status int
		role   string
		state  string
	}{
		{"student is pending", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "secret1"}, http.StatusCreated, models.RoleStudent, models.StatusPending},
		{"duplicate email", map[string]string{"name": "Ada 2", "email": "ADA@example.com", "password": "secret1"}, http.StatusConflict, "", ""},
		{"short password", map[string]string{"name": "Bob", "email": "bob@example.com", "password": "123"}, http.StatusBadRequest, "", ""},
		{"blank name", map[string]string{"name": "  ", "email": "bob@example.com", "password": "secret1"}, http.StatusBadRequest, "", ""},
		{"malformed email", map[string]string{"name": "Bob", "email": "not-an-email", "password": "secret1"}, http.StatusBadRequest, "", ""},
		{"malformed json", `{"name":`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/register", tt.body))
			rec.AssertStatus(t, tt.status)

			if tt.status != http.StatusCreated {
				return
			}
			var resp struct {
				User models.User `json:"user"`
			}
			rec.DecodeJSON(t, &resp)
			if resp.User.Role != tt.role || resp.User.Status != tt.state {
				t.Errorf("user = %+v, want role %q status %q", resp.User, tt.role, tt.state)
			}
			if resp.User.GroupIDs == nil || len(resp.User.GroupIDs) != 0 {
				t.Errorf("expected empty group list, got %v", resp.User.GroupIDs)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc := testutil.NewServices(t)
	r := newRouter(t, svc, nil)

	svc.Approved(t, "Ada", "ada@example.com", "secret1")
	if _, err := svc.Identity.Register(t.Context(), "Pat", "pat@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name   string
		email  string
		pw     string
		status int
		home   string
	}{
		{"admin", testutil.AdminEmail, testutil.AdminPassword, http.StatusOK, "/admin/dashboard"},
		{"approved student", "ada@example.com", "secret1", http.StatusOK, "/student/feed"},
		{"pending student", "pat@example.com", "secret1", http.StatusForbidden, ""},
		{"wrong password", "ada@example.com", "nope-nope", http.StatusUnauthorized, ""},
		{"unknown email", "who@example.com", "secret1", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/login", map[string]string{"email": tt.email, "password": tt.pw}))
			rec.AssertStatus(t, tt.status)

			cookies := rec.Result().Cookies()
			if tt.status != http.StatusOK {
				if len(cookies) != 0 {
					t.Errorf("expected no session cookie on failure, got %v", cookies)
				}
				return
			}
			var resp struct {
				Home string `json:"home"`
			}
			rec.DecodeJSON(t, &resp)
			if resp.Home != tt.home {
				t.Errorf("home = %q, want %q", resp.Home, tt.home)
			}
			if len(cookies) == 0 || cookies[0].Name != "test-session" {
				t.Errorf("expected session cookie, got %v", cookies)
			}
		})
	}
}

func TestLogin_ReturnsGroupIDs(t *testing.T) {
	svc := testutil.NewServices(t)
	r := newRouter(t, svc, nil)

	u := svc.Approved(t, "Ada", "ada@example.com", "secret1")
	g := svc.Group(t, "Robotics")
	if err := svc.Membership.AddMembership(t.Context(), u.ID, g.ID); err != nil {
		t.Fatalf("add membership: %v", err)
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/login", map[string]string{"email": "ada@example.com", "password": "secret1"}))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.User.GroupIDs) != 1 || resp.User.GroupIDs[0] != g.ID {
		t.Errorf("group_ids = %v, want [%s]", resp.User.GroupIDs, g.ID.Hex())
	}
}

func TestLogin_PendingMessage(t *testing.T) {
	svc := testutil.NewServices(t)
	r := newRouter(t, svc, nil)

	if _, err := svc.Identity.Register(t.Context(), "Pat", "pat@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/login", map[string]string{"email": "pat@example.com", "password": "secret1"}))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "pending_approval")
}

func TestLogin_Throttled(t *testing.T) {
	svc := testutil.NewServices(t)
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	r := newRouter(t, svc, limiter)

	body := map[string]string{"email": "ada@example.com", "password": "wrong-pass"}
	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/login", body))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/login", body))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}
