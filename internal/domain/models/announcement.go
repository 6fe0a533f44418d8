// internal/domain/models/announcement.go
package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength bounds a single announcement, in characters after sanitizing.
const MaxMessageLength = 5000

// Announcement is a message posted to one group. It is never edited or deleted.
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	Message   string             `bson:"message" json:"message"`
	PostedBy  primitive.ObjectID `bson:"posted_by" json:"posted_by"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Seq       int64              `bson:"seq" json:"-"` // insertion order, breaks timestamp ties
}

// Validate checks a decoded announcement document.
func (a Announcement) Validate() error {
	switch {
	case a.ID.IsZero():
		return fmt.Errorf("%w: announcement missing _id", errs.ErrMalformedRecord)
	case a.GroupID.IsZero():
		return fmt.Errorf("%w: announcement %s missing group_id", errs.ErrMalformedRecord, a.ID.Hex())
	case a.Timestamp.IsZero():
		return fmt.Errorf("%w: announcement %s missing timestamp", errs.ErrMalformedRecord, a.ID.Hex())
	}
	return nil
}

// SortNewestFirst orders announcements by timestamp descending; equal
// timestamps put the later insertion first.
func SortNewestFirst(list []Announcement) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].Seq > list[j].Seq
	})
}
