// Package membership is the approval and group-membership state machine.
//
// Group membership lives only in the group_memberships edge collection; a
// user's GroupIDs and a group's MemberIDs are both derived from it, so the
// two views cannot disagree after an add or remove returns.
package membership

import (
	"context"
	"fmt"

	"github.com/dalemusser/bulletin/internal/app/system/normalize"
	"github.com/dalemusser/bulletin/internal/app/system/retry"
	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"github.com/dalemusser/bulletin/internal/app/system/txn"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the slice of store/users the service needs.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	List(ctx context.Context, status string) ([]models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Count(ctx context.Context, role, status string) (int64, error)
}

// GroupStore is the slice of store/groups the service needs.
type GroupStore interface {
	Create(ctx context.Context, name string) (models.Group, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	List(ctx context.Context) ([]models.Group, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error)
	Count(ctx context.Context) (int64, error)
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// EdgeStore is the group_memberships collection.
type EdgeStore interface {
	Add(ctx context.Context, userID, groupID primitive.ObjectID) error
	Remove(ctx context.Context, userID, groupID primitive.ObjectID) error
	GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	UserIDsForGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
	All(ctx context.Context) ([]models.GroupMembership, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// Service implements status changes, membership edges and group management.
type Service struct {
	users  UserStore
	groups GroupStore
	edges  EdgeStore
	tx     txn.Runner
	policy Policy
	log    *zap.Logger
}

// New creates a Service. A nil tx runs multi-document writes without a
// transaction; an empty policy means DefaultPolicy.
func New(users UserStore, groups GroupStore, edges EdgeStore, tx txn.Runner, policy Policy, logger *zap.Logger) *Service {
	if tx == nil {
		tx = txn.Direct{}
	}
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Service{users: users, groups: groups, edges: edges, tx: tx, policy: policy, log: logger}
}

// Policy returns the status policy in force.
func (s *Service) Policy() Policy { return s.policy }

/*─────────────────────────────────────────────────────────────────────────────*
| Approval status                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SetUserStatus moves a student to status. Writing the current status is a
// no-op. The administrator's status never changes.
func (s *Service) SetUserStatus(ctx context.Context, userID primitive.ObjectID, status string) error {
	to := normalize.Status(status)
	if !models.IsValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", errs.ErrInvalidInput, status)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.set_user_status")
	defer cancel()

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if u.IsAdmin() {
		return fmt.Errorf("%w: the administrator's status cannot change", errs.ErrInvalidTransition)
	}
	if u.Status == to {
		return nil
	}
	if !s.policy.Allows(u.Status, to) {
		return fmt.Errorf("%w: %s -> %s under %s policy", errs.ErrInvalidTransition, u.Status, to, s.policy)
	}

	err = retry.Do(ctx, s.log, "users.set_status", func(ctx context.Context) error {
		return s.users.SetStatus(ctx, userID, to)
	})
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	s.log.Info("user status changed",
		zap.String("user_id", userID.Hex()),
		zap.String("from", u.Status),
		zap.String("to", to))
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Membership edges                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// AddMembership puts userID in groupID. Adding an existing member succeeds.
func (s *Service) AddMembership(ctx context.Context, userID, groupID primitive.ObjectID) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.add")
	defer cancel()

	if _, err := s.getUser(ctx, userID); err != nil {
		return fmt.Errorf("add membership: user %s: %w", userID.Hex(), err)
	}
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return fmt.Errorf("add membership: group %s: %w", groupID.Hex(), err)
	}

	err := retry.Do(ctx, s.log, "memberships.add", func(ctx context.Context) error {
		return s.edges.Add(ctx, userID, groupID)
	})
	if err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// RemoveMembership takes userID out of groupID. Removing a non-member succeeds.
func (s *Service) RemoveMembership(ctx context.Context, userID, groupID primitive.ObjectID) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.remove")
	defer cancel()

	err := retry.Do(ctx, s.log, "memberships.remove", func(ctx context.Context) error {
		return s.edges.Remove(ctx, userID, groupID)
	})
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Groups                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateGroup adds a group with no members.
func (s *Service) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Group{}, fmt.Errorf("%w: group name is required", errs.ErrInvalidInput)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.create_group")
	defer cancel()

	g, err := s.groups.Create(ctx, name)
	if err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	g.MemberIDs = []primitive.ObjectID{}
	s.log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("name", g.GroupName))
	return g, nil
}

// RenameGroup changes a group's name.
func (s *Service) RenameGroup(ctx context.Context, groupID primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	if name == "" {
		return fmt.Errorf("%w: group name is required", errs.ErrInvalidInput)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.rename_group")
	defer cancel()

	err := retry.Do(ctx, s.log, "groups.rename", func(ctx context.Context) error {
		return s.groups.Rename(ctx, groupID, name)
	})
	if err != nil {
		return fmt.Errorf("rename group: %w", err)
	}
	return nil
}

// DeleteGroup removes the group and every membership edge that points at it.
func (s *Service) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), s.log, "membership.delete_group")
	defer cancel()

	var removed int64
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.groups.Delete(ctx, groupID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		removed, err = s.edges.DeleteByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete group: %w", errs.FromStore(err))
	}

	s.log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.Int64("memberships_removed", removed))
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ListUsers returns users with the given status ("" for everyone), each
// with its derived GroupIDs.
func (s *Service) ListUsers(ctx context.Context, status string) ([]models.User, error) {
	if status != "" {
		status = normalize.Status(status)
		if !models.IsValidStatus(status) {
			return nil, fmt.Errorf("%w: unknown status filter %q", errs.ErrInvalidInput, status)
		}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.list_users")
	defer cancel()

	var users []models.User
	err := retry.Do(ctx, s.log, "users.list", func(ctx context.Context) error {
		var err error
		users, err = s.users.List(ctx, status)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	edges, err := s.allEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byUser := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, e := range edges {
		byUser[e.UserID] = append(byUser[e.UserID], e.GroupID)
	}
	for i := range users {
		users[i].GroupIDs = orEmpty(byUser[users[i].ID])
	}
	return users, nil
}

// GetUser returns one user with its derived GroupIDs.
func (s *Service) GetUser(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.get_user")
	defer cancel()

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	ids, err := s.groupIDs(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	u.GroupIDs = ids
	return u, nil
}

// ListGroups returns every group with its derived MemberIDs.
func (s *Service) ListGroups(ctx context.Context) ([]models.Group, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.list_groups")
	defer cancel()

	var groups []models.Group
	err := retry.Do(ctx, s.log, "groups.list", func(ctx context.Context) error {
		var err error
		groups, err = s.groups.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	edges, err := s.allEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	byGroup := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, e := range edges {
		byGroup[e.GroupID] = append(byGroup[e.GroupID], e.UserID)
	}
	for i := range groups {
		groups[i].MemberIDs = orEmpty(byGroup[groups[i].ID])
	}
	return groups, nil
}

// GetGroup returns one group with its derived MemberIDs.
func (s *Service) GetGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.get_group")
	defer cancel()

	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return models.Group{}, fmt.Errorf("get group: %w", err)
	}
	ids, err := s.memberIDs(ctx, groupID)
	if err != nil {
		return models.Group{}, fmt.Errorf("get group: %w", err)
	}
	g.MemberIDs = ids
	return g, nil
}

// GroupsForUser returns the groups userID belongs to, ordered by name.
func (s *Service) GroupsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.groups_for_user")
	defer cancel()

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("groups for user: %w", err)
	}
	ids, err := s.groupIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("groups for user: %w", err)
	}

	var groups []models.Group
	err = retry.Do(ctx, s.log, "groups.get_many", func(ctx context.Context) error {
		var err error
		groups, err = s.groups.GetMany(ctx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("groups for user: %w", err)
	}
	return groups, nil
}

// IsMember reports whether userID belongs to groupID.
func (s *Service) IsMember(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "membership.is_member")
	defer cancel()

	ids, err := s.groupIDs(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	for _, id := range ids {
		if id == groupID {
			return true, nil
		}
	}
	return false, nil
}

// MembersOfGroup returns the users in groupID, ordered by name.
func (s *Service) MembersOfGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.members_of_group")
	defer cancel()

	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("members of group: %w", err)
	}
	ids, err := s.memberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("members of group: %w", err)
	}

	var users []models.User
	err = retry.Do(ctx, s.log, "users.get_many", func(ctx context.Context) error {
		var err error
		users, err = s.users.GetMany(ctx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("members of group: %w", err)
	}
	return users, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Service) getUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := retry.Do(ctx, s.log, "users.get_by_id", func(ctx context.Context) error {
		var err error
		u, err = s.users.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (s *Service) getGroup(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := retry.Do(ctx, s.log, "groups.get_by_id", func(ctx context.Context) error {
		var err error
		g, err = s.groups.GetByID(ctx, id)
		return err
	})
	return g, err
}

func (s *Service) groupIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	err := retry.Do(ctx, s.log, "memberships.group_ids_for_user", func(ctx context.Context) error {
		var err error
		ids, err = s.edges.GroupIDsForUser(ctx, userID)
		return err
	})
	return orEmpty(ids), err
}

func (s *Service) memberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	err := retry.Do(ctx, s.log, "memberships.user_ids_for_group", func(ctx context.Context) error {
		var err error
		ids, err = s.edges.UserIDsForGroup(ctx, groupID)
		return err
	})
	return orEmpty(ids), err
}

func (s *Service) allEdges(ctx context.Context) ([]models.GroupMembership, error) {
	var edges []models.GroupMembership
	err := retry.Do(ctx, s.log, "memberships.all", func(ctx context.Context) error {
		var err error
		edges, err = s.edges.All(ctx)
		return err
	})
	return edges, err
}

func orEmpty(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
