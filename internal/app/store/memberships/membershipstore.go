// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store owns the group_memberships collection: one document per
// (user_id, group_id). Both the user's group list and the group's member
// list are read from here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

// Add upserts the edge. Adding an existing edge is a no-op.
func (s *Store) Add(ctx context.Context, userID, groupID primitive.ObjectID) error {
	filter := bson.M{"user_id": userID, "group_id": groupID}
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":    userID,
		"group_id":   groupID,
		"created_at": time.Now().UTC(),
	}}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts can race on the unique index; the loser
		// still leaves the edge in place.
		if wafflemongo.IsDup(err) {
			return nil
		}
		return errs.FromStore(err)
	}
	return nil
}

// Remove deletes the edge. Removing a missing edge is a no-op.
func (s *Store) Remove(ctx context.Context, userID, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "group_id": groupID})
	return errs.FromStore(err)
}

// GroupIDsForUser lists the groups userID belongs to, oldest edge first.
func (s *Store) GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.ids(ctx, bson.M{"user_id": userID}, "group_id")
}

// UserIDsForGroup lists the members of groupID, oldest edge first.
func (s *Store) UserIDsForGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.ids(ctx, bson.M{"group_id": groupID}, "user_id")
}

func (s *Store) ids(ctx context.Context, filter bson.M, field string) ([]primitive.ObjectID, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{field: 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		id, ok := doc[field].(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("%w: membership missing %s", errs.ErrMalformedRecord, field)
		}
		out = append(out, id)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}

// DeleteByGroup removes all memberships for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return res.DeletedCount, nil
}

// All returns every edge. Used by the consistency scan.
func (s *Store) All(ctx context.Context) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := []models.GroupMembership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}

// DeleteByIDs removes the given edges.
// Returns the number of documents deleted.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, errs.FromStore(err)
	}
	return res.DeletedCount, nil
}
