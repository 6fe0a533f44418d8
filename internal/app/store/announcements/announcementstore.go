// Package announcementstore persists announcements. Documents are written
// once and never updated.
package announcementstore

import (
	"context"
	"fmt"

	counterstore "github.com/dalemusser/bulletin/internal/app/store/counters"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterName = "announcements"

type Store struct {
	c   *mongo.Collection
	seq *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("announcements"),
		seq: counterstore.New(db),
	}
}

// Insert assigns an ID and the next sequence number, then writes a.
// The caller sets GroupID, Message, PostedBy and Timestamp.
func (s *Store) Insert(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	seq, err := s.seq.Next(ctx, counterName)
	if err != nil {
		return models.Announcement{}, err
	}
	a.ID = primitive.NewObjectID()
	a.Seq = seq

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, errs.FromStore(err)
	}
	return a, nil
}

// ListByGroups returns the announcements of every listed group in one query,
// newest first (ties broken by later insertion first).
func (s *Store) ListByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Announcement, error) {
	if len(groupIDs) == 0 {
		return []models.Announcement{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}}, opts)
	if err != nil {
		return nil, errs.FromStore(err)
	}
	defer cur.Close(ctx)

	out := []models.Announcement{}
	for cur.Next(ctx) {
		var a models.Announcement
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRecord, err)
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.FromStore(err)
	}
	return out, nil
}
