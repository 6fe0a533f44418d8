// internal/app/features/announcements/handler.go
package announcements

import (
	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/feed"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"go.uber.org/zap"
)

// Handler serves group announcement feeds and posting.
type Handler struct {
	Feed       *feed.Service
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(fs *feed.Service, mem *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Feed:       fs,
		Membership: mem,
		ErrLog:     errLog,
		Log:        logger,
	}
}
