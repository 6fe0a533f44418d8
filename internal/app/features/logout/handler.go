// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Identity   *identity.Manager
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(ids *identity.Manager, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Identity:   ids,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// ServeLogout handles POST /logout. It closes the server-side session and
// expires the cookie. Calling it without a session is not an error.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.SessionMgr.Token(r); token != "" {
		if err := h.Identity.Logout(r.Context(), token); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: clear session cookie", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
