// Package feed posts announcements to groups and assembles the newest-first
// lists shown to students and administrators.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/bulletin/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bulletin/internal/app/system/retry"
	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxMessageLength is re-exported for callers that only import feed.
const MaxMessageLength = models.MaxMessageLength

// AnnouncementStore is the append-only announcement log.
type AnnouncementStore interface {
	Insert(ctx context.Context, a models.Announcement) (models.Announcement, error)
	ListByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Announcement, error)
}

// GroupReader checks that a group exists.
type GroupReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

// MembershipReader lists a user's groups.
type MembershipReader interface {
	GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Service posts and reads announcements.
type Service struct {
	announcements AnnouncementStore
	groups        GroupReader
	memberships   MembershipReader
	log           *zap.Logger
	now           func() time.Time
}

// New creates a Service.
func New(announcements AnnouncementStore, groups GroupReader, memberships MembershipReader, logger *zap.Logger) *Service {
	return &Service{
		announcements: announcements,
		groups:        groups,
		memberships:   memberships,
		log:           logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PostAnnouncement stores message for groupID as trimmed plain text. A blank
// message or one containing HTML is rejected.
func (s *Service) PostAnnouncement(ctx context.Context, groupID primitive.ObjectID, message string, authorID primitive.ObjectID) (models.Announcement, error) {
	msg, err := htmlsanitize.PlainText(message)
	if err != nil {
		return models.Announcement{}, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if msg == "" {
		return models.Announcement{}, fmt.Errorf("%w: message is required", errs.ErrInvalidInput)
	}
	if n := len([]rune(msg)); n > MaxMessageLength {
		return models.Announcement{}, fmt.Errorf("%w: message is %d characters; the limit is %d", errs.ErrInvalidInput, n, MaxMessageLength)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "feed.post")
	defer cancel()

	err = retry.Do(ctx, s.log, "groups.get_by_id", func(ctx context.Context) error {
		_, err := s.groups.GetByID(ctx, groupID)
		return err
	})
	if err != nil {
		return models.Announcement{}, fmt.Errorf("post announcement: group %s: %w", groupID.Hex(), err)
	}

	a, err := s.announcements.Insert(ctx, models.Announcement{
		GroupID:   groupID,
		Message:   msg,
		PostedBy:  authorID,
		Timestamp: s.now().Truncate(time.Millisecond),
	})
	if err != nil {
		return models.Announcement{}, fmt.Errorf("post announcement: %w", err)
	}

	s.log.Info("announcement posted",
		zap.String("announcement_id", a.ID.Hex()),
		zap.String("group_id", groupID.Hex()),
		zap.String("posted_by", authorID.Hex()))
	return a, nil
}

// FeedForGroup returns the group's announcements, newest first.
func (s *Service) FeedForGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Announcement, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "feed.for_group")
	defer cancel()

	out, err := s.list(ctx, []primitive.ObjectID{groupID})
	if err != nil {
		return nil, fmt.Errorf("feed for group %s: %w", groupID.Hex(), err)
	}
	return out, nil
}

// FeedForUser returns the announcements of every group userID belongs to,
// newest first. A user with no groups gets an empty feed without touching
// the announcement store.
func (s *Service) FeedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Announcement, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "feed.for_user")
	defer cancel()

	var groupIDs []primitive.ObjectID
	err := retry.Do(ctx, s.log, "memberships.group_ids_for_user", func(ctx context.Context) error {
		var err error
		groupIDs, err = s.memberships.GroupIDsForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("feed for user %s: %w", userID.Hex(), err)
	}
	if len(groupIDs) == 0 {
		return []models.Announcement{}, nil
	}

	out, err := s.list(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("feed for user %s: %w", userID.Hex(), err)
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Announcement, error) {
	var out []models.Announcement
	err := retry.Do(ctx, s.log, "announcements.list_by_groups", func(ctx context.Context) error {
		var err error
		out, err = s.announcements.ListByGroups(ctx, groupIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	models.SortNewestFirst(out)
	if out == nil {
		out = []models.Announcement{}
	}
	return out, nil
}
