// internal/app/features/profile/profile.go
package profile

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"go.uber.org/zap"
)

type profileRequest struct {
	Name  string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email string `json:"email" validate:"notblank,max=254" label:"Email"`
}

// Show handles GET /me. The user's group ids come from the membership edges.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	u, err := h.Membership.GetUser(r.Context(), authz.UserID(r))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}

// Update handles PUT /me.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	userID := authz.UserID(r)
	if _, err := h.Identity.UpdateProfile(r.Context(), userID, req.Name, req.Email); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Info("profile updated", zap.String("user_id", userID.Hex()))

	u, err := h.Membership.GetUser(r.Context(), userID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}
