// Package redissessions is a session registry backed by Redis. Each session
// is one key that Redis expires on its own, so CloseExpired has nothing to do.
package redissessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "bulletin:session:"

// Store implements the session registry on a redis client.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New returns a Store using DefaultPrefix.
func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb, prefix: DefaultPrefix}
}

// record is the stored JSON form. models.Session hides the token from JSON.
type record struct {
	ID           primitive.ObjectID `json:"id"`
	UserID       primitive.ObjectID `json:"user_id"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    time.Time          `json:"expires_at"`
	LastActiveAt time.Time          `json:"last_active_at"`
}

func (s *Store) key(token string) string { return s.prefix + token }

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
	if err := s.write(ctx, sess, ttl, false); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByToken returns errs.ErrNotFound for unknown, closed, or expired tokens.
func (s *Store) GetByToken(ctx context.Context, token string) (models.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		return models.Session{}, fromRedis(err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Session{}, fmt.Errorf("%w: session %v", errs.ErrMalformedRecord, err)
	}
	return models.Session{
		ID:           rec.ID,
		Token:        token,
		UserID:       rec.UserID,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
		LastActiveAt: rec.LastActiveAt,
	}, nil
}

// Touch records activity on a live session; the expiry is unchanged.
func (s *Store) Touch(ctx context.Context, token string, at time.Time) error {
	sess, err := s.GetByToken(ctx, token)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	remaining := time.Until(sess.ExpiresAt)
	if remaining <= 0 {
		return nil
	}
	sess.LastActiveAt = at.UTC()
	return s.write(ctx, sess, remaining, true)
}

// Close deletes the session. Unknown tokens are a no-op.
func (s *Store) Close(ctx context.Context, token, _ string) error {
	return fromRedis(s.rdb.Del(ctx, s.key(token)).Err())
}

// CloseExpired is a no-op; Redis drops expired keys itself.
func (s *Store) CloseExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *Store) write(ctx context.Context, sess models.Session, ttl time.Duration, onlyIfExists bool) error {
	data, err := json.Marshal(record{
		ID:           sess.ID,
		UserID:       sess.UserID,
		CreatedAt:    sess.CreatedAt,
		ExpiresAt:    sess.ExpiresAt,
		LastActiveAt: sess.LastActiveAt,
	})
	if err != nil {
		return err
	}
	if onlyIfExists {
		err = s.rdb.SetXX(ctx, s.key(sess.Token), data, ttl).Err()
	} else {
		err = s.rdb.Set(ctx, s.key(sess.Token), data, ttl).Err()
	}
	return fromRedis(err)
}

func fromRedis(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return errs.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", errs.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
}
