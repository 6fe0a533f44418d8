// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// kinds maps each error kind to its HTTP status and client-facing name.
// Order matters: the first match wins.
var kinds = []struct {
	err    error
	status int
	name   string
}{
	{errs.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{errs.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{errs.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{errs.ErrNotFound, http.StatusNotFound, "not_found"},
	{errs.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{errs.ErrPendingApproval, http.StatusForbidden, "pending_approval"},
	{errs.ErrInconsistent, http.StatusConflict, "inconsistent"},
	{errs.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{errs.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	{errs.ErrMalformedRecord, http.StatusInternalServerError, "malformed_record"},
}

// StatusFor returns the HTTP status and kind name for err.
// Unclassified errors are 500 "internal".
func StatusFor(err error) (int, string) {
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.status, k.name
		}
	}
	return http.StatusInternalServerError, "internal"
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorLogger writes error responses and logs the ones that are the server's fault.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Write maps err to a status and writes the JSON error body. Client errors
// carry the error text; server errors carry a generic message and are logged.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := StatusFor(err)
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		_, _, userID, _ := authz.UserCtx(r)
		e.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userID.Hex()),
			zap.Int("status", status),
			zap.Error(err))
		msg = http.StatusText(status)
	} else {
		e.Log.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("kind", kind),
			zap.Error(err))
	}

	WriteJSON(w, status, errorBody{Error: msg, Kind: kind})
}

// WriteStatus writes a JSON error body with an explicit status and message.
func WriteStatus(w http.ResponseWriter, status int, kind, msg string) {
	WriteJSON(w, status, errorBody{Error: msg, Kind: kind})
}

// Handler serves the router's fallback responses.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteStatus(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteStatus(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
}
