package memstore

import (
	"context"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credentials mirrors store/credentials.
type Credentials struct{ db *DB }

func (s *Credentials) Create(ctx context.Context, c models.Credential) error {
	if err := s.db.begin(ctx, "credentials.Create"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c.Email = normalize.Email(c.Email)
	for _, other := range s.db.credentials {
		if other.Email == c.Email {
			return errs.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.db.credentials[c.ID] = c
	return nil
}

func (s *Credentials) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	if err := s.db.begin(ctx, "credentials.GetByEmail"); err != nil {
		return models.Credential{}, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	email = normalize.Email(email)
	for _, c := range s.db.credentials {
		if c.Email == email {
			return c, nil
		}
	}
	return models.Credential{}, errs.ErrNotFound
}

func (s *Credentials) UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	if err := s.db.begin(ctx, "credentials.UpdateEmail"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.credentials[id]
	if !ok {
		return errs.ErrNotFound
	}
	email = normalize.Email(email)
	for _, other := range s.db.credentials {
		if other.ID != id && other.Email == email {
			return errs.ErrDuplicateEmail
		}
	}
	c.Email = email
	c.UpdatedAt = time.Now().UTC()
	s.db.credentials[id] = c
	return nil
}

func (s *Credentials) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.db.begin(ctx, "credentials.Delete"); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.credentials, id)
	return nil
}

// Len returns the number of stored credentials.
func (s *Credentials) Len() int {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.credentials)
}
