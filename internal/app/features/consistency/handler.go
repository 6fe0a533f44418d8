// internal/app/features/consistency/handler.go
package consistency

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/membership"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the membership consistency check and repair.
type Handler struct {
	Membership *membership.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(mem *membership.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Membership: mem, ErrLog: errLog, Log: logger}
}

type checkResponse struct {
	Consistent bool `json:"consistent"`
	membership.Report
}

// ServeCheck handles GET /admin/consistency. Dangling edges are reported in
// a 200 body; only a failed scan is an error response.
func (h *Handler) ServeCheck(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Membership.CheckConsistency(r.Context())
	if err != nil && !errors.Is(err, errs.ErrInconsistent) {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, checkResponse{Consistent: err == nil, Report: rep})
}

// HandleRepair handles POST /admin/consistency/repair.
func (h *Handler) HandleRepair(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Membership.Repair(r.Context())
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Info("consistency repair run",
		zap.Int("edges", rep.Edges),
		zap.Int64("removed", rep.Removed))
	uierrors.WriteJSON(w, http.StatusOK, checkResponse{Consistent: true, Report: rep})
}

// Routes returns the /admin/consistency subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCheck)
	r.Post("/repair", h.HandleRepair)
	return r
}
