// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes registers POST /register and POST /login on r.
// Both are public.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}
