// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the user-approval subrouter. The caller mounts it under
// /admin/users behind the admin role check.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/status", h.HandleStatus)
	return r
}
