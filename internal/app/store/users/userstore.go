package userstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns errs.ErrNotFound if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, errs.FromStore(err)
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user. The caller chooses the ID (it is shared with
// the credential); a zero ID gets a fresh one.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
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

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, errs.ErrDuplicateEmail
		}
		return models.User{}, errs.FromStore(err)
	}
	return u, nil
}

// List returns users ordered by name. An empty status lists everyone.
func (s *Store) List(ctx context.Context, status string) ([]models.User, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

// GetMany loads the users with the given ids, ordered by name. Missing ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := []models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}

// ExistingIDs returns the subset of ids that have a user document.
func (s *Store) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return existingIDs(ctx, s.c, ids)
}

// SetStatus writes a new approval status. Returns errs.ErrNotFound if the user is missing.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return errs.FromStore(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateProfile sets name and email. Returns errs.ErrDuplicateEmail if the
// email belongs to another user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) error {
	name = normalize.Name(name)
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
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

// Delete removes a user. Deleting a missing user is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return errs.FromStore(err)
}

// Count returns the number of users matching role and status; empty values match all.
func (s *Store) Count(ctx context.Context, role, status string) (int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if status != "" {
		filter["status"] = status
	}
	n, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return n, nil
}

// existingIDs is shared by the stores that back the consistency scan.
func existingIDs(ctx context.Context, c *mongo.Collection, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}
	cur, err := c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := make([]primitive.ObjectID, 0, len(ids))
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		out = append(out, row.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}
