package groups_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/features/groups"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(svc *testutil.Services) *groups.Handler {
	return groups.NewHandler(svc.Membership, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
}

func studentRouter(h *groups.Handler) chi.Router {
	r := chi.NewRouter()
	groups.MountStudentRoutes(r, h)
	return r
}

func TestHandleCreate(t *testing.T) {
	svc := testutil.NewServices(t)
	svc.Group(t, "Robotics")
	r := groups.AdminRoutes(newHandler(svc))
	admin := testutil.FromModel(svc.Admin)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"created", map[string]string{"name": "  Chess   Club "}, http.StatusCreated},
		{"blank", map[string]string{"name": "   "}, http.StatusBadRequest},
		{"missing", map[string]string{}, http.StatusBadRequest},
		{"duplicate ignores case", map[string]string{"name": "ROBOTICS"}, http.StatusBadRequest},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/", tt.body), admin))
			rec.AssertStatus(t, tt.status)
		})
	}

	list, err := svc.Membership.ListGroups(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].GroupName != "Chess Club" {
		t.Errorf("unexpected groups %+v", list)
	}
}

func TestMembershipRoundTrip(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Student("Ada", "ada@example.com", models.StatusApproved)
	g := svc.Group(t, "Robotics")
	r := groups.AdminRoutes(newHandler(svc))
	admin := testutil.FromModel(svc.Admin)
	path := "/" + g.ID.Hex() + "/members/" + ada.ID.Hex()

	// Adding twice is fine.
	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("POST", path, admin))
		rec.AssertStatus(t, http.StatusOK)
		var got models.Group
		rec.DecodeJSON(t, &got)
		if len(got.MemberIDs) != 1 || got.MemberIDs[0] != ada.ID {
			t.Fatalf("member ids after add = %v", got.MemberIDs)
		}
	}

	u, err := svc.Membership.GetUser(t.Context(), ada.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(u.GroupIDs) != 1 || u.GroupIDs[0] != g.ID {
		t.Errorf("user group ids = %v", u.GroupIDs)
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/"+g.ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"members":[{`)

	for i := 0; i < 2; i++ {
		rec = testutil.NewRecorder()
		r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", path, admin))
		rec.AssertStatus(t, http.StatusOK)
	}

	u, err = svc.Membership.GetUser(t.Context(), ada.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(u.GroupIDs) != 0 {
		t.Errorf("user group ids after remove = %v", u.GroupIDs)
	}
}

func TestHandleAddMember_Errors(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Student("Ada", "ada@example.com", models.StatusApproved)
	g := svc.Group(t, "Robotics")
	r := groups.AdminRoutes(newHandler(svc))
	admin := testutil.FromModel(svc.Admin)
	missing := primitive.NewObjectID().Hex()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown user", "/" + g.ID.Hex() + "/members/" + missing, http.StatusNotFound},
		{"unknown group", "/" + missing + "/members/" + ada.ID.Hex(), http.StatusNotFound},
		{"bad user id", "/" + g.ID.Hex() + "/members/xyz", http.StatusBadRequest},
		{"bad group id", "/xyz/members/" + ada.ID.Hex(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("POST", tt.path, admin))
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestHandleRenameAndDelete(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Student("Ada", "ada@example.com", models.StatusApproved)
	g := svc.Group(t, "Robotics")
	svc.Group(t, "Chess")
	if err := svc.Membership.AddMembership(t.Context(), ada.ID, g.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	r := groups.AdminRoutes(newHandler(svc))
	admin := testutil.FromModel(svc.Admin)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("PUT", "/"+g.ID.Hex(), map[string]string{"name": "Robots"}), admin))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"group_name":"Robots"`)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("PUT", "/"+g.ID.Hex(), map[string]string{"name": "chess"}), admin))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", "/"+g.ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("DELETE", "/"+g.ID.Hex(), admin))
	rec.AssertStatus(t, http.StatusNotFound)

	// The cascade leaves no edge behind.
	u, err := svc.Membership.GetUser(t.Context(), ada.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(u.GroupIDs) != 0 {
		t.Errorf("group ids after delete = %v", u.GroupIDs)
	}
}

func TestServeList_StoreTimeout(t *testing.T) {
	svc := testutil.NewServices(t)
	svc.DB.Fail("groups.List", errs.ErrTimeout, 0)

	rec := testutil.NewRecorder()
	groups.AdminRoutes(newHandler(svc)).ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.FromModel(svc.Admin)))
	rec.AssertStatus(t, http.StatusGatewayTimeout)
}

func TestStudentRoutes(t *testing.T) {
	svc := testutil.NewServices(t)
	ada := svc.Student("Ada", "ada@example.com", models.StatusApproved)
	mine := svc.Group(t, "Robotics")
	other := svc.Group(t, "Chess")
	if err := svc.Membership.AddMembership(t.Context(), ada.ID, mine.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	r := studentRouter(newHandler(svc))
	student := testutil.FromModel(ada)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/groups", student))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Group
	rec.DecodeJSON(t, &list)
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("student groups = %+v", list)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/groups/"+mine.ID.Hex(), student))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/groups/"+other.ID.Hex(), student))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, "not_member")
}
