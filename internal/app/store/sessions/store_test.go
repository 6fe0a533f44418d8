package sessions_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/bulletin/internal/app/store/sessions"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	sess, err := store.Create(ctx, userID, time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a token")
	}

	got, err := store.GetByToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %v, want %v", got.UserID, userID)
	}
	if !got.Active(time.Now()) {
		t.Error("expected new session to be active")
	}

	if _, err := store.GetByToken(ctx, "nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetByToken(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, primitive.NewObjectID(), time.Hour)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Close(ctx, sess.Token, models.EndLogout); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(ctx, sess.Token, models.EndLogout); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := store.Close(ctx, "unknown", models.EndLogout); err != nil {
		t.Errorf("Close(unknown) = %v, want nil", err)
	}

	got, _ := store.GetByToken(ctx, sess.Token)
	if got.ClosedAt == nil || got.EndReason != models.EndLogout {
		t.Errorf("session not closed: %+v", got)
	}
}

func TestStore_CloseExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old, _ := store.Create(ctx, primitive.NewObjectID(), time.Millisecond)
	fresh, _ := store.Create(ctx, primitive.NewObjectID(), time.Hour)

	n, err := store.CloseExpired(ctx, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("CloseExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("closed %d sessions, want 1", n)
	}

	got, _ := store.GetByToken(ctx, old.Token)
	if got.EndReason != models.EndExpired {
		t.Errorf("EndReason = %q, want %q", got.EndReason, models.EndExpired)
	}
	got, _ = store.GetByToken(ctx, fresh.Token)
	if got.ClosedAt != nil {
		t.Error("fresh session should still be open")
	}
}
