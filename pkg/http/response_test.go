package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "servimarket/pkg/errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "app error", err: apperrors.NotFoundWithID("Service", "9"), wantStatus: http.StatusNotFound, wantCode: apperrors.CodeNotFound},
		{name: "conflict", err: apperrors.Conflict("Slot already booked"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeConflict, wantMessage: "Slot already booked"},
		{name: "internal details are masked", err: apperrors.Internal("mongo: connection refused", errors.New("dial tcp")), wantStatus: http.StatusInternalServerError, wantCode: apperrors.CodeInternal, wantMessage: "Internal server error"},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: apperrors.CodeInternal, wantMessage: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("unexpected write error: %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}

			body := decodeError(t, w)
			if body.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Code)
			}
			if tt.wantMessage != "" && body.Error != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, body.Error)
			}
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{query: "", wantLimit: 10, wantOffset: 0},
		{query: "limit=20&offset=40", wantLimit: 20, wantOffset: 40},
		{query: "limit=9999", wantLimit: 100, wantOffset: 0},
		{query: "offset=-5", wantLimit: 10, wantOffset: 0},
		{query: "limit=ten", wantErr: true},
		{query: "offset=1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/services?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.wantLimit, tt.wantOffset, limit, offset)
			}
		})
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Corte","owner":"x"}`))
	err := DecodeJSON(r, &dst)
	if got := apperrors.AsAppError(err).StatusCode(); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Corte"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Title != "Corte" {
		t.Errorf("expected decoded title, got %q (%v)", dst.Title, err)
	}
}

func TestFallbackHandlers(t *testing.T) {
	w := httptest.NewRecorder()
	NotFoundHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound || decodeError(t, w).Code != apperrors.CodeNotFound {
		t.Errorf("unexpected not found response: %d", w.Code)
	}

	w = httptest.NewRecorder()
	MethodNotAllowedHandler().ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/services", nil))
	if w.Code != http.StatusMethodNotAllowed || decodeError(t, w).Code != apperrors.CodeMethodNotAllowed {
		t.Errorf("unexpected method not allowed response: %d", w.Code)
	}
}
