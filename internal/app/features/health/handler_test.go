package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bulletin/internal/app/features/health"
	"github.com/dalemusser/bulletin/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions string `json:"sessions"`
	Message  string `json:"message"`
}

func TestServe(t *testing.T) {
	tests := []struct {
		name     string
		db       health.PingFunc
		sessions health.Pinger
		status   int
		want     response
	}{
		{"all up", ok, nil, http.StatusOK, response{Status: "ok", Database: "connected"}},
		{"database down", down, nil, http.StatusServiceUnavailable,
			response{Status: "error", Database: "disconnected", Message: "Database unavailable"}},
		{"redis up", ok, health.PingFunc(ok), http.StatusOK,
			response{Status: "ok", Database: "connected", Sessions: "connected"}},
		{"redis down", ok, health.PingFunc(down), http.StatusServiceUnavailable,
			response{Status: "error", Database: "connected", Sessions: "disconnected", Message: "Session store unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(tt.db, tt.sessions, zap.NewNop())

			rec := httptest.NewRecorder()
			health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			var got response
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if got != tt.want {
				t.Errorf("response = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestServe_MongoConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	client := db.Client()
	h := health.NewHandler(health.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
