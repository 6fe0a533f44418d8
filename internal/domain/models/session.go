// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndLogout  = "logout"
	EndExpired = "expired"
	EndRevoked = "revoked" // user lost approval while signed in
)

// Session is a server-side login session. The cookie only carries Token.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token        string             `bson:"token" json:"-"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt    time.Time          `bson:"expires_at" json:"expires_at"`
	LastActiveAt time.Time          `bson:"last_active_at" json:"last_active_at"`
	ClosedAt     *time.Time         `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	EndReason    string             `bson:"end_reason,omitempty" json:"end_reason,omitempty"`
}

// Active reports whether the session is open and unexpired at now.
func (s Session) Active(now time.Time) bool {
	return s.ClosedAt == nil && now.Before(s.ExpiresAt)
}
