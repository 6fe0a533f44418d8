// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store keeps server-side login sessions in the sessions collection.
// Closed sessions are kept (closed_at + end_reason) as a login history.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create opens a session for userID that expires after ttl.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (models.Session, error) {
	now := time.Now().UTC()
	sess := models.Session{
		ID:           primitive.NewObjectID(),
		Token:        uuid.NewString(),
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActiveAt: now,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, errs.FromStore(err)
	}
	return sess, nil
}

// GetByToken returns errs.ErrNotFound for unknown tokens. Closed and
// expired sessions are returned as-is; callers check Active.
func (s *Store) GetByToken(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&sess); err != nil {
		return models.Session{}, errs.FromStore(err)
	}
	return sess, nil
}

// Touch records activity on an open session.
func (s *Store) Touch(ctx context.Context, token string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"token": token, "closed_at": nil},
		bson.M{"$set": bson.M{"last_active_at": at.UTC()}},
	)
	return errs.FromStore(err)
}

// Close ends an open session. Unknown or already closed tokens are a no-op.
func (s *Store) Close(ctx context.Context, token, reason string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"token": token, "closed_at": nil},
		bson.M{"$set": bson.M{"closed_at": time.Now().UTC(), "end_reason": reason}},
	)
	return errs.FromStore(err)
}

// CloseExpired closes every open session whose expiry is before now.
// Returns the number of sessions closed.
func (s *Store) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"closed_at": nil, "expires_at": bson.M{"$lte": now.UTC()}},
		bson.M{"$set": bson.M{"closed_at": now.UTC(), "end_reason": models.EndExpired}},
	)
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return res.ModifiedCount, nil
}
