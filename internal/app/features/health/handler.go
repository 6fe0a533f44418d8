package health

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler holds dependencies needed for health checks.
type Handler struct {
	Database Pinger
	Sessions Pinger // nil when sessions live in the database
	Log      *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(database, sessions Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Database: database,
		Sessions: sessions,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions string `json:"sessions,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected"}
	status := http.StatusOK

	if err := h.Database.Ping(ctx); err != nil {
		h.Log.Error("health-check: database ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}

	if h.Sessions != nil {
		resp.Sessions = "connected"
		if err := h.Sessions.Ping(ctx); err != nil {
			h.Log.Error("health-check: session store ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			resp.Status = "error"
			resp.Sessions = "disconnected"
			if resp.Message == "" {
				resp.Message = "Session store unavailable"
			}
		}
	}

	uierrors.WriteJSON(w, status, resp)
}
