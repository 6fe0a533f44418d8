// internal/app/features/members/status.go
package members

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"go.uber.org/zap"
)

type statusRequest struct {
	Status string `json:"status" validate:"required,userstatus" label:"Status"`
}

// HandleStatus handles POST /admin/users/{id}/status. Transitions the
// configured policy forbids come back as 409.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var req statusRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	if err := h.Membership.SetUserStatus(r.Context(), id, req.Status); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Log.Info("status set by admin",
		zap.String("user_id", id.Hex()),
		zap.String("status", req.Status),
		zap.String("actor_id", actor.Hex()))

	u, err := h.Membership.GetUser(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}
