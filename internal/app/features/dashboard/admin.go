// internal/app/features/dashboard/admin.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.uber.org/zap"
)

type adminData struct {
	UserName     string                     `json:"user_name"`
	Counts       membership.DashboardCounts `json:"counts"`
	PendingUsers []models.User              `json:"pending_users"`
}

// ServeAdmin handles GET /admin/dashboard: headline counts plus the
// pending-approval queue.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	_, uname, _, _ := authz.UserCtx(r)

	counts, err := h.Membership.Dashboard(r.Context())
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	pending, err := h.Membership.ListUsers(r.Context(), models.StatusPending)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	h.Log.Debug("admin dashboard served", zap.String("user", uname))
	uierrors.WriteJSON(w, http.StatusOK, adminData{
		UserName:     uname,
		Counts:       counts,
		PendingUsers: pending,
	})
}
