// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/bulletin/internal/app/features/shared"
	"github.com/go-chi/chi/v5"
)

// AdminRoutes returns the /admin/groups subrouter. The caller applies the
// admin role check.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleRename)
	r.Delete("/{id}", h.HandleDelete)

	r.Post("/{id}/members/{userID}", h.HandleAddMember)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)

	return r
}

// MountStudentRoutes registers the student's group routes on r, which the
// caller has already restricted to students.
func MountStudentRoutes(r chi.Router, h *Handler) {
	r.Get("/groups", h.ServeMine)
	r.With(shared.RequireGroupMember(h.Membership, h.ErrLog, "id")).Get("/groups/{id}", h.ServeOne)
}
