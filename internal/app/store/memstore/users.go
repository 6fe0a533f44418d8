package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users mirrors store/users.
type Users struct{ db *DB }

func (s *Users) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	if err := s.db.begin(ctx, "users.GetByID"); err != nil {
		return models.User{}, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, errs.ErrNotFound
	}
	return u, u.Validate()
}

func (s *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if err := s.db.begin(ctx, "users.GetByEmail"); err != nil {
		return models.User{}, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	email = normalize.Email(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, u.Validate()
		}
	}
	return models.User{}, errs.ErrNotFound
}

func (s *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := s.db.begin(ctx, "users.Create"); err != nil {
		return models.User{}, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.GroupIDs = nil
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := u.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if _, taken := s.db.users[u.ID]; taken {
		return models.User{}, fmt.Errorf("%w: duplicate user id", errs.ErrInvalidInput)
	}
	for _, other := range s.db.users {
		if other.Email == u.Email {
			return models.User{}, errs.ErrDuplicateEmail
		}
	}
	s.db.users[u.ID] = u
	return u, nil
}

func (s *Users) List(ctx context.Context, status string) ([]models.User, error) {
	if err := s.db.begin(ctx, "users.List"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.db.users {
		if status == "" || u.Status == status {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *Users) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if err := s.db.begin(ctx, "users.GetMany"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.db.users {
		if contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *Users) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.db.begin(ctx, "users.ExistingIDs"); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []primitive.ObjectID{}
	for _, id := range ids {
		if _, ok := s.db.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Users) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if err := s.db.begin(ctx, "users.SetStatus"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	s.db.users[id] = u
	return nil
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error {
	if err := s.db.begin(ctx, "users.UpdateProfile"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	email = normalize.Email(email)
	for _, other := range s.db.users {
		if other.ID != id && other.Email == email {
			return errs.ErrDuplicateEmail
		}
	}
	u.Name = normalize.Name(name)
	u.NameCI = text.Fold(u.Name)
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	s.db.users[id] = u
	return nil
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.db.begin(ctx, "users.Delete"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.users, id)
	return nil
}

func (s *Users) Count(ctx context.Context, role, status string) (int64, error) {
	if err := s.db.begin(ctx, "users.Count"); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var n int64
	for _, u := range s.db.users {
		if (role == "" || u.Role == role) && (status == "" || u.Status == status) {
			n++
		}
	}
	return n, nil
}

// Put stores u as-is, skipping normalization and validation. Tests use it
// to plant malformed records.
func (s *Users) Put(u models.User) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.users[u.ID] = u
}

func sortUsers(list []models.User) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].NameCI != list[j].NameCI {
			return list[i].NameCI < list[j].NameCI
		}
		return lessID(list[i].ID, list[j].ID)
	})
}
