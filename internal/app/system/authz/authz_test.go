package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name     string
		user     *auth.SessionUser
		wantRole string
		wantOK   bool
		wantID   primitive.ObjectID
	}{
		{"no user", nil, "visitor", false, primitive.NilObjectID},
		{"malformed id", &auth.SessionUser{ID: "nope", Role: "admin"}, "visitor", false, primitive.NilObjectID},
		{"admin", &auth.SessionUser{ID: id.Hex(), Name: "Root", Role: "Admin"}, "admin", true, id},
		{"student", &auth.SessionUser{ID: id.Hex(), Role: "student"}, "student", true, id},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			role, _, gotID, ok := authz.UserCtx(req)
			if role != tt.wantRole || ok != tt.wantOK || gotID != tt.wantID {
				t.Errorf("UserCtx() = (%q, %s, %v), want (%q, %s, %v)",
					role, gotID.Hex(), ok, tt.wantRole, tt.wantID.Hex(), tt.wantOK)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role        string
		wantAdmin   bool
		wantStudent bool
		wantHome    string
	}{
		{"admin", true, false, "/admin/dashboard"},
		{"ADMIN", true, false, "/admin/dashboard"},
		{"student", false, true, "/student/feed"},
		{"guest", false, false, "/student/feed"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: tt.role})

			if got := authz.IsAdmin(req); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.wantAdmin)
			}
			if got := authz.IsStudent(req); got != tt.wantStudent {
				t.Errorf("IsStudent() = %v, want %v", got, tt.wantStudent)
			}
			if got := authz.HomePath(req); got != tt.wantHome {
				t.Errorf("HomePath() = %q, want %q", got, tt.wantHome)
			}
		})
	}
}

func TestNoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if authz.IsAdmin(req) || authz.IsStudent(req) {
		t.Error("expected no role without a signed-in user")
	}
	if authz.HasAnyRole(req, "admin", "student") {
		t.Error("expected HasAnyRole to be false without a user")
	}
	if !authz.UserID(req).IsZero() {
		t.Error("expected NilObjectID without a user")
	}
	if authz.HomePath(req) != "/login" {
		t.Errorf("HomePath() = %q, want /login", authz.HomePath(req))
	}
}

func TestHasAnyRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "Student"})

	if !authz.HasAnyRole(req, " student ") {
		t.Error("expected trimmed, case-insensitive role match")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected admin not to match")
	}
	if role, ok := authz.Role(req); !ok || role != "student" {
		t.Errorf("Role() = (%q, %v)", role, ok)
	}
}
