// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/bulletin/internal/domain/models"
)

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// HomePath is where a signed-in user's navigation starts: the admin
// dashboard for the administrator and the feed for students.
func HomePath(r *http.Request) string {
	switch role, ok := Role(r); {
	case !ok:
		return "/login"
	case role == models.RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/student/feed"
	}
}
