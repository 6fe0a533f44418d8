// internal/domain/models/group.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named set of students that announcements are posted to.
//
// NOTE:
//   - MemberIDs is not stored on the group document.
//     It is filled from the group_memberships collection on read.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	GroupName   string               `bson:"group_name" json:"group_name"`
	GroupNameCI string               `bson:"group_name_ci" json:"-"`
	MemberIDs   []primitive.ObjectID `bson:"-" json:"member_ids"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

// Validate checks a decoded group document.
func (g Group) Validate() error {
	if g.ID.IsZero() {
		return fmt.Errorf("%w: group missing _id", errs.ErrMalformedRecord)
	}
	if strings.TrimSpace(g.GroupName) == "" {
		return fmt.Errorf("%w: group %s missing group_name", errs.ErrMalformedRecord, g.ID.Hex())
	}
	return nil
}
