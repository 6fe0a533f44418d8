package groupstore

import (
	"context"
	"errors"
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

// ErrDuplicateGroupName is returned when another group already uses the name
// (case-insensitively).
var ErrDuplicateGroupName = errors.New("a group with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, errs.FromStore(err)
	}
	if err := g.Validate(); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, name string) (models.Group, error) {
	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		GroupName: normalize.Name(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.GroupNameCI = text.Fold(g.GroupName)

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, fmt.Errorf("%w: %w", errs.ErrInvalidInput, ErrDuplicateGroupName)
		}
		return models.Group{}, errs.FromStore(err)
	}
	return g, nil
}

// Rename sets a new name. Returns errs.ErrNotFound if the group is missing.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"group_name":    name,
		"group_name_ci": text.Fold(name),
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return fmt.Errorf("%w: %w", errs.ErrInvalidInput, ErrDuplicateGroupName)
		}
		return errs.FromStore(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return res.DeletedCount, nil
}

// List returns every group ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	return s.find(ctx, bson.M{})
}

// GetMany loads the groups with the given ids, ordered by name. Missing ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "group_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}

// Count returns the number of groups.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return n, nil
}

// ExistingIDs returns the subset of ids that have a group document.
func (s *Store) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"_id": 1}))
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
