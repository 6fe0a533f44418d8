// Package credentialstore holds the email/password records that back login.
// A credential's _id is the id of the user created with it.
package credentialstore

import (
	"context"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("credentials")}
}

// Create inserts a credential. The email must be unique.
func (s *Store) Create(ctx context.Context, c models.Credential) error {
	c.Email = normalize.Email(c.Email)
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return errs.ErrDuplicateEmail
		}
		return errs.FromStore(err)
	}
	return nil
}

// GetByEmail returns errs.ErrNotFound when no credential uses email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&c); err != nil {
		return models.Credential{}, errs.FromStore(err)
	}
	return c, nil
}

// UpdateEmail changes the sign-in email for id.
func (s *Store) UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"email":      normalize.Email(email),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return errs.ErrDuplicateEmail
		}
		return errs.FromStore(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the credential; missing is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return errs.FromStore(err)
}
