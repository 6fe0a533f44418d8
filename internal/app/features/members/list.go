// internal/app/features/members/list.go
package members

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
)

// ServeList handles GET /admin/users. An optional ?status= narrows the list
// to pending, approved or rejected users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	users, err := h.Membership.ListUsers(r.Context(), status)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, users)
}

// ServeView handles GET /admin/users/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	u, err := h.Membership.GetUser(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}
