// internal/app/features/groups/admin.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.uber.org/zap"
)

type groupRequest struct {
	Name string `json:"name" validate:"notblank,max=200" label:"Group name"`
}

// groupDetail is a group together with its member records.
type groupDetail struct {
	models.Group
	Members []models.User `json:"members"`
}

// ServeList handles GET /admin/groups.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Membership.ListGroups(r.Context())
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, groups)
}

// HandleCreate handles POST /admin/groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	g, err := h.Membership.CreateGroup(r.Context(), req.Name)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, g)
}

// ServeView handles GET /admin/groups/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	g, err := h.Membership.GetGroup(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	members, err := h.Membership.MembersOfGroup(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, groupDetail{Group: g, Members: members})
}

// HandleRename handles PUT /admin/groups/{id}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var req groupRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	if err := h.Membership.RenameGroup(r.Context(), id, req.Name); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	g, err := h.Membership.GetGroup(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

// HandleDelete handles DELETE /admin/groups/{id}. The group's membership
// edges go with it; its announcements stay in the log.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	if err := h.Membership.DeleteGroup(r.Context(), id); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddMember handles POST /admin/groups/{id}/members/{userID}.
// Adding an existing member succeeds.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	if err := h.Membership.AddMembership(r.Context(), userID, groupID); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Info("member added",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))

	h.writeGroup(w, r, groupID)
}

// HandleRemoveMember handles DELETE /admin/groups/{id}/members/{userID}.
// Removing a non-member succeeds.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}

	if err := h.Membership.RemoveMembership(r.Context(), userID, groupID); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Info("member removed",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))

	h.writeGroup(w, r, groupID)
}
