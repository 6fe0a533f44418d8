package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	groupstore "github.com/dalemusser/bulletin/internal/app/store/groups"
	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Groups mirrors store/groups, including the case-insensitive unique name.
type Groups struct{ db *DB }

func (s *Groups) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	if err := s.db.begin(ctx, "groups.GetByID"); err != nil {
		return models.Group{}, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	g, ok := s.db.groups[id]
	if !ok {
		return models.Group{}, errs.ErrNotFound
	}
	return g, g.Validate()
}

func (s *Groups) Create(ctx context.Context, name string) (models.Group, error) {
	if err := s.db.begin(ctx, "groups.Create"); err != nil {
		return models.Group{}, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		GroupName: normalize.Name(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.GroupNameCI = text.Fold(g.GroupName)
	if s.nameTaken(g.GroupNameCI, g.ID) {
		return models.Group{}, fmt.Errorf("%w: %w", errs.ErrInvalidInput, groupstore.ErrDuplicateGroupName)
	}
	s.db.groups[g.ID] = g
	return g, nil
}

func (s *Groups) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	if err := s.db.begin(ctx, "groups.Rename"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g, ok := s.db.groups[id]
	if !ok {
		return errs.ErrNotFound
	}
	g.GroupName = normalize.Name(name)
	g.GroupNameCI = text.Fold(g.GroupName)
	if s.nameTaken(g.GroupNameCI, id) {
		return fmt.Errorf("%w: %w", errs.ErrInvalidInput, groupstore.ErrDuplicateGroupName)
	}
	g.UpdatedAt = time.Now().UTC()
	s.db.groups[id] = g
	return nil
}

func (s *Groups) nameTaken(nameCI string, except primitive.ObjectID) bool {
	for _, other := range s.db.groups {
		if other.ID != except && other.GroupNameCI == nameCI {
			return true
		}
	}
	return false
}

func (s *Groups) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if err := s.db.begin(ctx, "groups.Delete"); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.groups[id]; !ok {
		return 0, nil
	}
	delete(s.db.groups, id)
	return 1, nil
}

func (s *Groups) List(ctx context.Context) ([]models.Group, error) {
	if err := s.db.begin(ctx, "groups.List"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Group, 0, len(s.db.groups))
	for _, g := range s.db.groups {
		out = append(out, g)
	}
	sortGroups(out)
	return out, nil
}

func (s *Groups) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if err := s.db.begin(ctx, "groups.GetMany"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.Group{}
	for _, g := range s.db.groups {
		if contains(ids, g.ID) {
			out = append(out, g)
		}
	}
	sortGroups(out)
	return out, nil
}

func (s *Groups) Count(ctx context.Context) (int64, error) {
	if err := s.db.begin(ctx, "groups.Count"); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.groups)), nil
}

func (s *Groups) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.db.begin(ctx, "groups.ExistingIDs"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []primitive.ObjectID{}
	for _, id := range ids {
		if _, ok := s.db.groups[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func sortGroups(list []models.Group) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].GroupNameCI != list[j].GroupNameCI {
			return list[i].GroupNameCI < list[j].GroupNameCI
		}
		return lessID(list[i].ID, list[j].ID)
	})
}
