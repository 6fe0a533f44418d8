package members_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/features/members"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRouter(svc *testutil.Services) http.Handler {
	h := members.NewHandler(svc.Membership, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return members.Routes(h)
}

func TestServeList(t *testing.T) {
	svc := testutil.NewServices(t)
	svc.Student("Ada", "ada@example.com", models.StatusApproved)
	svc.Student("Bob", "bob@example.com", models.StatusPending)
	r := newRouter(svc)
	admin := testutil.FromModel(svc.Admin)

	tests := []struct {
		name   string
		target string
		status int
		count  int
	}{
		{"everyone", "/", http.StatusOK, 3},
		{"pending", "/?status=pending", http.StatusOK, 1},
		{"approved ignores case", "/?status=APPROVED", http.StatusOK, 2},
		{"rejected", "/?status=rejected", http.StatusOK, 0},
		{"unknown", "/?status=active", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", tt.target, admin))
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var got []models.User
			rec.DecodeJSON(t, &got)
			if len(got) != tt.count {
				t.Errorf("got %d users, want %d", len(got), tt.count)
			}
		})
	}
}

func TestServeView(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Student("Ada", "ada@example.com", models.StatusApproved)
	r := newRouter(svc)
	admin := testutil.FromModel(svc.Admin)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+ada.ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusOK)
	var got models.User
	rec.DecodeJSON(t, &got)
	if got.Email != "ada@example.com" || got.GroupIDs == nil {
		t.Errorf("unexpected user %+v", got)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+primitive.NewObjectID().Hex(), admin))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/not-an-id", admin))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleStatus(t *testing.T) {
	svc := testutil.NewServices(t)
	bob := svc.Student("Bob", "bob@example.com", models.StatusPending)
	r := newRouter(svc)
	admin := testutil.FromModel(svc.Admin)

	tests := []struct {
		name   string
		id     primitive.ObjectID
		body   any
		status int
	}{
		{"approve", bob.ID, map[string]string{"status": "approved"}, http.StatusOK},
		{"approve again is a no-op", bob.ID, map[string]string{"status": "Approved"}, http.StatusOK},
		{"revoke", bob.ID, map[string]string{"status": "rejected"}, http.StatusOK},
		{"back to pending", bob.ID, map[string]string{"status": "pending"}, http.StatusConflict},
		{"unknown status", bob.ID, map[string]string{"status": "banned"}, http.StatusBadRequest},
		{"missing status", bob.ID, map[string]string{}, http.StatusBadRequest},
		{"unknown field", bob.ID, map[string]string{"status": "approved", "role": "admin"}, http.StatusBadRequest},
		{"administrator", svc.Admin.ID, map[string]string{"status": "rejected"}, http.StatusConflict},
		{"missing user", primitive.NewObjectID(), map[string]string{"status": "approved"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(testutil.NewJSONRequest("POST", "/"+tt.id.Hex()+"/status", tt.body), admin)
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	u, err := svc.Membership.GetUser(t.Context(), bob.ID)
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if u.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", u.Status)
	}
}

func TestHandleStatus_StoreUnavailable(t *testing.T) {
	svc := testutil.NewServices(t)
	bob := svc.Student("Bob", "bob@example.com", models.StatusPending)
	svc.DB.Fail("users.SetStatus", errs.ErrStoreUnavailable, 0)

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/"+bob.ID.Hex()+"/status", map[string]string{"status": "approved"}), testutil.FromModel(svc.Admin))
	rec := testutil.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, "store_unavailable")
}
