// internal/app/features/dashboard/handler.go
package dashboard

import (
	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"go.uber.org/zap"
)

// Handler serves the administrator's landing page data.
type Handler struct {
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a dashboard Handler.
func NewHandler(mem *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Membership: mem, ErrLog: errLog, Log: logger}
}
