// internal/domain/models/user.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsValidStatus reports whether s is one of the three user statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User represents the administrator and students.
//
// NOTE:
//   - Group membership is not stored on the user document.
//     GroupIDs is filled from the group_memberships collection on read.
type User struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Name      string               `bson:"name" json:"name"`
	NameCI    string               `bson:"name_ci" json:"-"`
	Email     string               `bson:"email" json:"email"`
	Role      string               `bson:"role" json:"role"`     // admin | student
	Status    string               `bson:"status" json:"status"` // pending | approved | rejected
	GroupIDs  []primitive.ObjectID `bson:"-" json:"group_ids"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanSignIn reports whether the user may hold an active session.
func (u User) CanSignIn() bool { return u.IsAdmin() || u.Status == StatusApproved }

// Validate checks a decoded user document.
func (u User) Validate() error {
	switch {
	case u.ID.IsZero():
		return fmt.Errorf("%w: user missing _id", errs.ErrMalformedRecord)
	case strings.TrimSpace(u.Email) == "":
		return fmt.Errorf("%w: user %s missing email", errs.ErrMalformedRecord, u.ID.Hex())
	case u.Role != RoleAdmin && u.Role != RoleStudent:
		return fmt.Errorf("%w: user %s has role %q", errs.ErrMalformedRecord, u.ID.Hex(), u.Role)
	case !IsValidStatus(u.Status):
		return fmt.Errorf("%w: user %s has status %q", errs.ErrMalformedRecord, u.ID.Hex(), u.Status)
	}
	return nil
}
