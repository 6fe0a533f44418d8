package indexes_test

import (
	"testing"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/indexes"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		collection string
		expected   []string
	}{
		{"users", []string{"uniq_users_email", "idx_users_status_nameci_id", "idx_users_role_status"}},
		{"credentials", []string{"uniq_credentials_email"}},
		{"groups", []string{"uniq_groups_groupnameci"}},
		{"group_memberships", []string{"uniq_gm_user_group", "idx_gm_group_user"}},
		{"announcements", []string{"idx_announcements_group_ts_seq"}},
		{"sessions", []string{"uniq_sessions_token", "idx_sessions_closed_expires", "ttl_sessions_closed_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			names := indexNames(t, db.Collection(tt.collection))
			for _, want := range tt.expected {
				if !names[want] {
					t.Errorf("expected index %q on %s, have %v", want, tt.collection, names)
				}
			}
		})
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys and uniqueness, different name.
	_, err := db.Collection("credentials").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, db.Collection("credentials"))
	if !names["uniq_credentials_email"] {
		t.Errorf("expected uniq_credentials_email, have %v", names)
	}
	if names["email_1"] {
		t.Error("expected legacy email_1 index to be dropped")
	}
}

func TestEnsureAll_DuplicateEmailsReported(t *testing.T) {
	db := testutil.SetupEmptyTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	_, err := db.Collection("users").InsertMany(ctx, []interface{}{
		bson.M{"email": "dup@example.com", "created_at": now},
		bson.M{"email": "dup@example.com", "created_at": now},
	})
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err == nil {
		t.Fatal("expected EnsureAll to report duplicate emails")
	}
}

func indexNames(t *testing.T, c *mongo.Collection) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := c.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}
