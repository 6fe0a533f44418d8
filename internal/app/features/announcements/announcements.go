// internal/app/features/announcements/announcements.go
package announcements

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
)

// postRequest is the body of a new announcement. The length limit is
// applied by the feed after markup is stripped.
type postRequest struct {
	Message string `json:"message" validate:"notblank" label:"Message"`
}

// ServeGroupFeed handles GET .../groups/{id}/announcements, newest first.
func (h *Handler) ServeGroupFeed(w http.ResponseWriter, r *http.Request) {
	groupID, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	list, err := h.Feed.FeedForGroup(r.Context(), groupID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// HandlePost handles POST /admin/groups/{id}/announcements.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	groupID, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	var req postRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	a, err := h.Feed.PostAnnouncement(r.Context(), groupID, req.Message, authz.UserID(r))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, a)
}

// ServeMyFeed handles GET /student/feed: announcements from every group the
// student belongs to, newest first.
func (h *Handler) ServeMyFeed(w http.ResponseWriter, r *http.Request) {
	list, err := h.Feed.FeedForUser(r.Context(), authz.UserID(r))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}
