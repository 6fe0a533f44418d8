// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own record.
type Handler struct {
	Identity   *identity.Manager
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(ids *identity.Manager, mem *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Identity:   ids,
		Membership: mem,
		ErrLog:     errLog,
		Log:        logger,
	}
}
