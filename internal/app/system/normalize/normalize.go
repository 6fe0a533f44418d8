// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/bulletin/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status lowercases a status value; unknown values come back empty.
func Status(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if models.IsValidStatus(s) {
		return s
	}
	return ""
}

// Role lowercases a role value; unknown values come back empty.
func Role(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case models.RoleAdmin, models.RoleStudent:
		return s
	}
	return ""
}
