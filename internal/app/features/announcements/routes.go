// internal/app/features/announcements/routes.go
package announcements

import (
	"github.com/dalemusser/bulletin/internal/app/features/shared"
	"github.com/go-chi/chi/v5"
)

// MountAdminRoutes registers posting and reading on the /admin/groups
// subrouter.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/{id}/announcements", h.ServeGroupFeed)
	r.Post("/{id}/announcements", h.HandlePost)
}

// MountStudentRoutes registers the student's feeds on r, which the caller
// has already restricted to students.
func MountStudentRoutes(r chi.Router, h *Handler) {
	r.Get("/feed", h.ServeMyFeed)
	r.With(shared.RequireGroupMember(h.Membership, h.ErrLog, "id")).Get("/groups/{id}/announcements", h.ServeGroupFeed)
}
