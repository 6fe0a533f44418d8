package profile_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/features/profile"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(svc *testutil.Services) *profile.Handler {
	return profile.NewHandler(svc.Identity, svc.Membership, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
}

func TestShow_IncludesGroups(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Approved(t, "Ada", "ada@example.com", "secret1")
	g := svc.Group(t, "Robotics")
	if err := svc.Membership.AddMembership(t.Context(), ada.ID, g.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec := testutil.NewRecorder()
	newHandler(svc).Show(rec, testutil.NewAuthenticatedRequest("GET", "/me", testutil.FromModel(ada)))
	rec.AssertStatus(t, http.StatusOK)

	var got models.User
	rec.DecodeJSON(t, &got)
	if got.ID != ada.ID || len(got.GroupIDs) != 1 || got.GroupIDs[0] != g.ID {
		t.Errorf("unexpected profile %+v", got)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	svc := testutil.NewServices(t)
	r := profile.Routes(newHandler(svc), svc.SessionManager(t))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestUpdate(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Approved(t, "Ada", "ada@example.com", "secret1")
	svc.Approved(t, "Bob", "bob@example.com", "secret1")

	tests := []struct {
		name   string
		user   models.User
		body   any
		status int
	}{
		{"rename", ada, map[string]string{"name": "Ada Lovelace", "email": "ada@example.com"}, http.StatusOK},
		{"new email", ada, map[string]string{"name": "Ada Lovelace", "email": "ada@lovelace.org"}, http.StatusOK},
		{"taken email", ada, map[string]string{"name": "Ada", "email": "bob@example.com"}, http.StatusConflict},
		{"student takes admin email", ada, map[string]string{"name": "Ada", "email": testutil.AdminEmail}, http.StatusBadRequest},
		{"admin leaves admin email", svc.Admin, map[string]string{"name": "Admin", "email": "other@example.com"}, http.StatusBadRequest},
		{"blank name", ada, map[string]string{"name": "", "email": "ada@example.com"}, http.StatusBadRequest},
	}

	h := newHandler(svc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/me", tt.body), testutil.FromModel(tt.user))
			rec := testutil.NewRecorder()
			h.Update(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	// The new email now signs in.
	if _, _, err := svc.Identity.Login(t.Context(), "ada@lovelace.org", "secret1"); err != nil {
		t.Errorf("login with updated email: %v", err)
	}
}
