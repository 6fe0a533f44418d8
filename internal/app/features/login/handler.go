// internal/app/features/login/handler.go
package login

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/identity"
	"github.com/dalemusser/bulletin/internal/app/system/auth"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"github.com/dalemusser/bulletin/internal/app/system/ratelimit"
	"github.com/dalemusser/bulletin/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves registration and sign-in.
type Handler struct {
	Identity   *identity.Manager
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a login Handler. A nil limiter disables throttling.
func NewHandler(ids *identity.Manager, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Identity:   ids,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email    string `json:"email" validate:"notblank,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"notblank,max=254" label:"Email"`
	Password string `json:"password" validate:"required,max=72" label:"Password"`
}

type registerResponse struct {
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

type loginResponse struct {
	User models.User `json:"user"`
	Home string      `json:"home"`
}

// Register handles POST /register.
// A new student is pending until the administrator approves it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if !h.allow(w, r, req.Email) {
		return
	}

	u, err := h.Identity.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	msg := "Registration received. An administrator must approve your account before you can sign in."
	if u.IsAdmin() {
		msg = "Administrator account created."
	}
	uierrors.WriteJSON(w, http.StatusCreated, registerResponse{User: u, Message: msg})
}

// Login handles POST /login. On success the session cookie is set and the
// response names the user's landing route.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if !h.allow(w, r, req.Email) {
		return
	}

	u, sess, err := h.Identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}

	if err := h.SessionMgr.SetToken(w, r, sess.Token); err != nil {
		h.Log.Error("login: save session cookie", zap.Error(err))
		// The browser will never present this session; close it now.
		_ = h.Identity.Logout(r.Context(), sess.Token)
		uierrors.WriteStatus(w, http.StatusInternalServerError, "internal", "could not start session")
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, loginResponse{User: u, Home: HomePath(u)})
}

// HomePath is the landing route for a signed-in user.
func HomePath(u models.User) string {
	if u.IsAdmin() {
		return "/admin/dashboard"
	}
	return "/student/feed"
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.Limiter == nil {
		return true
	}
	ok, reason := h.Limiter.Check(r, email)
	if !ok {
		h.Log.Warn("sign-in throttled",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("path", r.URL.Path))
		uierrors.WriteStatus(w, http.StatusTooManyRequests, "rate_limited", reason)
	}
	return ok
}
