package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"servimarket/pkg/config"
	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Hour,
		MaxRequestSize:    64,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig())

	health := routes(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	api := routes(func(r *httprouter.Router) {
		r.GET("/api/v1/ping", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			_ = httputil.WriteSuccess(w, "pong")
		})
		r.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			var body map[string]any
			if err := httputil.DecodeJSON(r, &body); err != nil {
				_ = httputil.WriteError(w, err)
				return
			}
			_ = httputil.WriteCreated(w, body)
		})
	})

	a.SetApp(health, api)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}

func TestUnknownRoute_JSONNotFound(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if code := errorCode(t, w); code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestRequestID_Echoed(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestMiddlewareChain(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{name: "json accepted", contentType: "application/json", body: `{"a":1}`, wantCode: http.StatusCreated},
		{name: "wrong content type", contentType: "text/plain", body: `{"a":1}`, wantCode: http.StatusUnsupportedMediaType},
		{name: "body too large", contentType: "application/json", body: `{"a":"` + strings.Repeat("x", 128) + `"}`, wantCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			a.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestRateLimit_SkipsHealth(t *testing.T) {
	a := newTestApp(t)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the window is full, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health must not be rate limited, got %d", w.Code)
	}
}

func TestClose_RunsClosersInReverse(t *testing.T) {
	a := newTestApp(t)

	var order []string
	a.OnShutdown("first", func(context.Context) error { order = append(order, "first"); return nil })
	a.OnShutdown("second", func(context.Context) error { order = append(order, "second"); return nil })

	a.Close(context.Background())

	if strings.Join(order, ",") != "second,first" {
		t.Errorf("unexpected closer order: %v", order)
	}
}
