package membership

import (
	"fmt"
	"strings"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/dalemusser/bulletin/internal/domain/models"
)

// Policy decides which approval-status changes an administrator may make.
type Policy string

const (
	// PolicyStrict allows only pending -> approved|rejected.
	PolicyStrict Policy = "strict"
	// PolicyRevocable also allows approved <-> rejected, never back to pending.
	PolicyRevocable Policy = "revocable"
	// PolicyPermissive allows any status to any status.
	PolicyPermissive Policy = "permissive"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyRevocable

// ParsePolicy accepts the policy names case-insensitively; "" yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPolicy, nil
	case PolicyStrict, PolicyRevocable, PolicyPermissive:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown status policy %q", errs.ErrInvalidInput, s)
}

// Allows reports whether from -> to is a permitted change. Equal statuses
// are always allowed (a no-op).
func (p Policy) Allows(from, to string) bool {
	if from == to {
		return true
	}
	switch p {
	case PolicyPermissive:
		return true
	case PolicyRevocable:
		return to != models.StatusPending
	default:
		return from == models.StatusPending && to != models.StatusPending
	}
}
