package membership

import (
	"context"
	"fmt"

	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// DashboardCounts is the administrator's landing summary.
type DashboardCounts struct {
	ApprovedStudents int64 `json:"approved_students"`
	PendingUsers     int64 `json:"pending_users"`
	Groups           int64 `json:"groups"`
}

// Dashboard fetches the three counts concurrently.
func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "membership.dashboard")
	defer cancel()

	var out DashboardCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx, models.RoleStudent, models.StatusApproved)
		out.ApprovedStudents = n
		return err
	})
	g.Go(func() error {
		n, err := s.users.Count(gctx, "", models.StatusPending)
		out.PendingUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.groups.Count(gctx)
		out.Groups = n
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardCounts{}, fmt.Errorf("dashboard: %w", err)
	}
	return out, nil
}
