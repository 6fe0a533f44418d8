// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /me subrouter. Every route requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.Show)
	r.Put("/", h.Update)
	return r
}
