package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/bulletin/internal/app/store/groups"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "  Period   3 ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Verify ID was assigned
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.GroupName != "Period 3" {
		t.Errorf("GroupName = %q, want %q", created.GroupName, "Period 3")
	}
	if created.GroupNameCI == "" {
		t.Error("expected GroupNameCI to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "Chess Club"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, "chess club")
	if !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput kind, got %v", err)
	}
}

func TestStore_RenameAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, "Old")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Rename(ctx, g.ID, "New"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.GroupName != "New" {
		t.Errorf("GroupName = %q, want New", got.GroupName)
	}

	if err := store.Rename(ctx, primitive.NewObjectID(), "X"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Rename missing = %v, want ErrNotFound", err)
	}

	n, err := store.Delete(ctx, g.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := store.GetByID(ctx, g.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndGetMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, "beta")
	a, _ := store.Create(ctx, "Alpha")
	store.Create(ctx, "Gamma")

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].GroupName != "Alpha" || all[1].GroupName != "beta" {
		t.Errorf("List order = %v", all)
	}

	some, err := store.GetMany(ctx, []primitive.ObjectID{b.ID, a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(some) != 2 {
		t.Errorf("GetMany returned %d groups, want 2", len(some))
	}

	n, err := store.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = (%d, %v), want 3", n, err)
	}
}
