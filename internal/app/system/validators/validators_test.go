package validators_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/validators"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expectedCollections := []string{
		"users",
		"credentials",
		"groups",
		"group_memberships",
		"announcements",
		"sessions",
		"counters",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestValidators_Inserts(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now()
	validUser := bson.M{
		"name":    "Test User",
		"name_ci": "test user",
		"email":   "test@example.com",
		"role":    models.RoleStudent,
		"status":  models.StatusPending,
	}
	with := func(base bson.M, k string, v interface{}) bson.M {
		out := bson.M{}
		for key, val := range base {
			out[key] = val
		}
		out[k] = v
		return out
	}

	tests := []struct {
		name       string
		collection string
		doc        bson.M
		wantErr    bool
	}{
		{"valid user", "users", validUser, false},
		{"user missing fields", "users", bson.M{"email": "x@example.com"}, true},
		{"user bad role", "users", with(validUser, "role", "superadmin"), true},
		{"user bad status", "users", with(validUser, "status", "active"), true},
		{"user blank name", "users", with(validUser, "name", "   "), true},
		{"valid credential", "credentials", bson.M{"email": "a@example.com", "password_hash": "$2a$..."}, false},
		{"credential missing hash", "credentials", bson.M{"email": "a@example.com"}, true},
		{"valid group", "groups", bson.M{"group_name": "Robotics", "group_name_ci": "robotics"}, false},
		{"group blank name", "groups", bson.M{"group_name": "", "group_name_ci": ""}, true},
		{"valid membership", "group_memberships", bson.M{"user_id": primitive.NewObjectID(), "group_id": primitive.NewObjectID()}, false},
		{"membership string ids", "group_memberships", bson.M{"user_id": "u1", "group_id": "g1"}, true},
		{"valid announcement", "announcements", bson.M{
			"group_id": primitive.NewObjectID(), "message": "hello", "posted_by": primitive.NewObjectID(),
			"timestamp": now, "seq": int64(1),
		}, false},
		{"announcement too long", "announcements", bson.M{
			"group_id": primitive.NewObjectID(), "message": strings.Repeat("x", models.MaxMessageLength+1),
			"posted_by": primitive.NewObjectID(), "timestamp": now, "seq": int64(2),
		}, true},
		{"valid session", "sessions", bson.M{
			"token": "abc", "user_id": primitive.NewObjectID(), "created_at": now, "expires_at": now.Add(time.Hour),
		}, false},
		{"session missing expiry", "sessions", bson.M{"token": "def", "user_id": primitive.NewObjectID(), "created_at": now}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.collection).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting into %s", tt.collection)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert into %s failed: %v", tt.collection, err)
			}
		})
	}
}
