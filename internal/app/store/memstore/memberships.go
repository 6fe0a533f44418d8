package memstore

import (
	"context"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memberships mirrors store/memberships. Edges are kept in insertion order.
type Memberships struct{ db *DB }

func (s *Memberships) Add(ctx context.Context, userID, groupID primitive.ObjectID) error {
	if err := s.db.begin(ctx, "memberships.Add"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, m := range s.db.memberships {
		if m.UserID == userID && m.GroupID == groupID {
			return nil
		}
	}
	s.db.memberships = append(s.db.memberships, models.GroupMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *Memberships) Remove(ctx context.Context, userID, groupID primitive.ObjectID) error {
	if err := s.db.begin(ctx, "memberships.Remove"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.memberships = s.keep(func(m models.GroupMembership) bool {
		return !(m.UserID == userID && m.GroupID == groupID)
	})
	return nil
}

func (s *Memberships) GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.db.begin(ctx, "memberships.GroupIDsForUser"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []primitive.ObjectID{}
	for _, m := range s.db.memberships {
		if m.UserID == userID {
			out = append(out, m.GroupID)
		}
	}
	return out, nil
}

func (s *Memberships) UserIDsForGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.db.begin(ctx, "memberships.UserIDsForGroup"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []primitive.ObjectID{}
	for _, m := range s.db.memberships {
		if m.GroupID == groupID {
			out = append(out, m.UserID)
		}
	}
	return out, nil
}

func (s *Memberships) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	if err := s.db.begin(ctx, "memberships.DeleteByGroup"); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	before := len(s.db.memberships)
	s.db.memberships = s.keep(func(m models.GroupMembership) bool { return m.GroupID != groupID })
	return int64(before - len(s.db.memberships)), nil
}

func (s *Memberships) All(ctx context.Context) ([]models.GroupMembership, error) {
	if err := s.db.begin(ctx, "memberships.All"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.GroupMembership, len(s.db.memberships))
	copy(out, s.db.memberships)
	return out, nil
}

func (s *Memberships) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if err := s.db.begin(ctx, "memberships.DeleteByIDs"); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	before := len(s.db.memberships)
	s.db.memberships = s.keep(func(m models.GroupMembership) bool { return !contains(ids, m.ID) })
	return int64(before - len(s.db.memberships)), nil
}

// Put appends an edge without checking either side. Tests use it to plant
// dangling references.
func (s *Memberships) Put(userID, groupID primitive.ObjectID) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.memberships = append(s.db.memberships, models.GroupMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	})
}

// keep must be called with the write lock held.
func (s *Memberships) keep(pred func(models.GroupMembership) bool) []models.GroupMembership {
	out := s.db.memberships[:0:0]
	for _, m := range s.db.memberships {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}
