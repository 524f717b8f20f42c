package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"servimarket/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, db Pinger, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	router := httprouter.New()
	NewHealthHandler(db, logger.Discard()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	if path != "/metrics" {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
	}
	return w, resp
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		wantCode int
		want     HealthResponse
	}{
		{name: "memory backend", db: nil, wantCode: http.StatusOK, want: HealthResponse{Status: "ready", Database: "memory"}},
		{name: "database up", db: pingFunc(func(context.Context) error { return nil }), wantCode: http.StatusOK, want: HealthResponse{Status: "ready", Database: "ok"}},
		{name: "database down", db: pingFunc(func(context.Context) error { return errors.New("connection refused") }), wantCode: http.StatusServiceUnavailable, want: HealthResponse{Status: "unavailable", Database: "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, tt.db, "/ready")
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if resp != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, resp)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	w, resp := serve(t, pingFunc(func(context.Context) error { return errors.New("down") }), "/health")
	if w.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("liveness must not depend on the database, got %d %+v", w.Code, resp)
	}
}

func TestMetrics(t *testing.T) {
	w, _ := serve(t, nil, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
