package memstore

import (
	"context"

	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcements mirrors store/announcements.
type Announcements struct{ db *DB }

func (s *Announcements) Insert(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	if err := s.db.begin(ctx, "announcements.Insert"); err != nil {
		return models.Announcement{}, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.seq++
	a.ID = primitive.NewObjectID()
	a.Seq = s.db.seq
	s.db.announcements = append(s.db.announcements, a)
	return a, nil
}

func (s *Announcements) ListByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Announcement, error) {
	if err := s.db.begin(ctx, "announcements.ListByGroups"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.Announcement{}
	if len(groupIDs) == 0 {
		return out, nil
	}
	for _, a := range s.db.announcements {
		if contains(groupIDs, a.GroupID) {
			out = append(out, a)
		}
	}
	models.SortNewestFirst(out)
	return out, nil
}

// Put appends a without assigning an id or sequence number.
func (s *Announcements) Put(a models.Announcement) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.announcements = append(s.db.announcements, a)
}
