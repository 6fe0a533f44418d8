package memstore

import (
	"context"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sessions mirrors store/sessions.
type Sessions struct{ db *DB }

func (s *Sessions) Create(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (models.Session, error) {
	if err := s.db.begin(ctx, "sessions.Create"); err != nil {
		return models.Session{}, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now().UTC()
	sess := models.Session{
		ID:           primitive.NewObjectID(),
		Token:        uuid.NewString(),
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActiveAt: now,
	}
	s.db.sessions[sess.Token] = sess
	return sess, nil
}

func (s *Sessions) GetByToken(ctx context.Context, token string) (models.Session, error) {
	if err := s.db.begin(ctx, "sessions.GetByToken"); err != nil {
		return models.Session{}, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	sess, ok := s.db.sessions[token]
	if !ok {
		return models.Session{}, errs.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) Touch(ctx context.Context, token string, at time.Time) error {
	if err := s.db.begin(ctx, "sessions.Touch"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if sess, ok := s.db.sessions[token]; ok && sess.ClosedAt == nil {
		sess.LastActiveAt = at.UTC()
		s.db.sessions[token] = sess
	}
	return nil
}

func (s *Sessions) Close(ctx context.Context, token, reason string) error {
	if err := s.db.begin(ctx, "sessions.Close"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if sess, ok := s.db.sessions[token]; ok && sess.ClosedAt == nil {
		now := time.Now().UTC()
		sess.ClosedAt = &now
		sess.EndReason = reason
		s.db.sessions[token] = sess
	}
	return nil
}

func (s *Sessions) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.db.begin(ctx, "sessions.CloseExpired"); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var n int64
	closedAt := now.UTC()
	for token, sess := range s.db.sessions {
		if sess.ClosedAt == nil && !now.Before(sess.ExpiresAt) {
			sess.ClosedAt = &closedAt
			sess.EndReason = models.EndExpired
			s.db.sessions[token] = sess
			n++
		}
	}
	return n, nil
}

// Expire moves a session's expiry into the past.
func (s *Sessions) Expire(token string) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if sess, ok := s.db.sessions[token]; ok {
		sess.ExpiresAt = time.Now().UTC().Add(-time.Second)
		s.db.sessions[token] = sess
	}
}
