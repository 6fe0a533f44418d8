// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for groups and their members.
type Handler struct {
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(mem *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Membership: mem,
		ErrLog:     errLog,
		Log:        logger,
	}
}
