package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bulletin/internal/domain/errs"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
		kind string
	}{
		{errs.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("register: %w", errs.ErrDuplicateEmail), http.StatusConflict, "duplicate_email"},
		{errs.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{errs.ErrNotFound, http.StatusNotFound, "not_found"},
		{errs.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{errs.ErrPendingApproval, http.StatusForbidden, "pending_approval"},
		{errs.ErrInconsistent, http.StatusConflict, "inconsistent"},
		{errs.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
		{errs.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{errs.ErrMalformedRecord, http.StatusInternalServerError, "malformed_record"},
		{stderrors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, kind := StatusFor(tt.err)
			if got != tt.want || kind != tt.kind {
				t.Errorf("StatusFor(%v) = (%d, %q), want (%d, %q)", tt.err, got, kind, tt.want, tt.kind)
			}
		})
	}
}

func TestErrorLogger_Write(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"client error keeps message", fmt.Errorf("%w: name is required", errs.ErrInvalidInput), http.StatusBadRequest, "invalid input: name is required"},
		{"server error hides detail", fmt.Errorf("%w: dial tcp 10.0.0.1", errs.ErrStoreUnavailable), http.StatusServiceUnavailable, "Service Unavailable"},
		{"unknown error hides detail", stderrors.New("secret detail"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			el.Write(rec, httptest.NewRequest("GET", "/x", nil), tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.message {
				t.Errorf("error = %q, want %q", body.Error, tt.message)
			}
		})
	}
}

func TestFallbackHandlers(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest("PATCH", "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status = %d", rec.Code)
	}
}
