// internal/app/features/groups/student.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
)

// ServeMine handles GET /student/groups: the signed-in student's groups.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Membership.GroupsForUser(r.Context(), authz.UserID(r))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, groups)
}

// ServeOne handles GET /student/groups/{id}. Membership is checked by the
// route's middleware.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.writeGroup(w, r, id)
}
