package membership

import (
	"context"
	"fmt"

	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Report describes membership edges that point at missing users or groups.
type Report struct {
	Edges    int                      `json:"edges"`
	Dangling []models.GroupMembership `json:"dangling"`
	Removed  int64                    `json:"removed"`
}

// CheckConsistency scans every edge. It returns the report together with
// errs.ErrInconsistent when any edge references a missing record.
func (s *Service) CheckConsistency(ctx context.Context) (Report, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), s.log, "membership.check_consistency")
	defer cancel()

	rep, err := s.scan(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("check consistency: %w", err)
	}
	if len(rep.Dangling) > 0 {
		return rep, fmt.Errorf("%w: %d dangling membership(s)", errs.ErrInconsistent, len(rep.Dangling))
	}
	return rep, nil
}

// Repair deletes every dangling edge found by the scan.
func (s *Service) Repair(ctx context.Context) (Report, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), s.log, "membership.repair")
	defer cancel()

	rep, err := s.scan(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("repair: %w", err)
	}
	if len(rep.Dangling) == 0 {
		return rep, nil
	}

	ids := make([]primitive.ObjectID, 0, len(rep.Dangling))
	for _, e := range rep.Dangling {
		ids = append(ids, e.ID)
	}
	rep.Removed, err = s.edges.DeleteByIDs(ctx, ids)
	if err != nil {
		return rep, fmt.Errorf("repair: %w", err)
	}

	s.log.Warn("removed dangling memberships", zap.Int64("count", rep.Removed))
	return rep, nil
}

func (s *Service) scan(ctx context.Context) (Report, error) {
	edges, err := s.allEdges(ctx)
	if err != nil {
		return Report{}, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(edges))
	groupIDs := make([]primitive.ObjectID, 0, len(edges))
	seenU := make(map[primitive.ObjectID]bool)
	seenG := make(map[primitive.ObjectID]bool)
	for _, e := range edges {
		if !seenU[e.UserID] {
			seenU[e.UserID] = true
			userIDs = append(userIDs, e.UserID)
		}
		if !seenG[e.GroupID] {
			seenG[e.GroupID] = true
			groupIDs = append(groupIDs, e.GroupID)
		}
	}

	liveUsers, err := s.users.ExistingIDs(ctx, userIDs)
	if err != nil {
		return Report{}, err
	}
	liveGroups, err := s.groups.ExistingIDs(ctx, groupIDs)
	if err != nil {
		return Report{}, err
	}
	okU := make(map[primitive.ObjectID]bool, len(liveUsers))
	for _, id := range liveUsers {
		okU[id] = true
	}
	okG := make(map[primitive.ObjectID]bool, len(liveGroups))
	for _, id := range liveGroups {
		okG[id] = true
	}

	rep := Report{Edges: len(edges), Dangling: []models.GroupMembership{}}
	for _, e := range edges {
		if !okU[e.UserID] || !okG[e.GroupID] {
			rep.Dangling = append(rep.Dangling, e)
		}
	}
	return rep, nil
}
