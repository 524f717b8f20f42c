package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"servimarket/internal/bookings/service"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/middleware"
	"servimarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error)
	gotUserID  string
	gotUpdate  *model.BookingStatusUpdate
}

func (m *mockBookingService) Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error) {
	m.gotUserID = userID
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &model.Booking{ID: "b1", UserID: userID, ServiceID: req.ServiceID, Status: model.BookingPending}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, userID, id string) (*model.Booking, error) {
	m.gotUserID = userID
	if id != "b1" {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) ListMine(ctx context.Context, userID string) (*service.BookingGroups, error) {
	m.gotUserID = userID
	return &service.BookingGroups{
		Upcoming:  []*model.Booking{{ID: "b1"}},
		Past:      []*model.Booking{},
		Cancelled: []*model.Booking{},
	}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, userID, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	m.gotUserID = userID
	m.gotUpdate = update
	return &model.Booking{ID: id, Status: update.Status}, nil
}

type staticIdentity struct {
	user *model.Identity
}

func (s staticIdentity) User() *model.Identity { return s.user }

func newRouter(svc service.BookingService, user *model.Identity) *httprouter.Router {
	router := httprouter.New()
	guard := middleware.RequireSession(staticIdentity{user: user}, nil, logger.Discard())
	NewBookingHandler(svc, guard, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestRoutes_RequireSession(t *testing.T) {
	router := newRouter(&mockBookingService{}, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings/id/b1"},
		{http.MethodPatch, "/api/v1/bookings/id/b1/status"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`)))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{name: "created", body: `{"service_id":"1","booking_date":"2026-11-20","booking_time":"09:00"}`, wantCode: http.StatusCreated},
		{name: "malformed body", body: `{"service_id":`, wantCode: http.StatusBadRequest},
		{name: "unknown field", body: `{"service_id":"1","status":"confirmed"}`, wantCode: http.StatusBadRequest},
		{name: "slot taken", body: `{"service_id":"1","booking_date":"2026-11-10","booking_time":"10:00"}`, svcErr: apperrors.Conflict("taken"), wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{}
			if tt.svcErr != nil {
				svc.createFunc = func(context.Context, string, *model.BookingRequest) (*model.Booking, error) {
					return nil, tt.svcErr
				}
			}

			w := httptest.NewRecorder()
			newRouter(svc, &model.Identity{ID: "client-joao"}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)))

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode == http.StatusCreated && svc.gotUserID != "client-joao" {
				t.Errorf("expected booking for client-joao, got %q", svc.gotUserID)
			}
		})
	}
}

func TestListMine(t *testing.T) {
	svc := &mockBookingService{}
	w := httptest.NewRecorder()
	newRouter(svc, &model.Identity{ID: "client-joao"}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data service.BookingGroups `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Data.Upcoming) != 1 || body.Data.Past == nil || body.Data.Cancelled == nil {
		t.Errorf("unexpected groups: %+v", body.Data)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockBookingService{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/b1/status", strings.NewReader(`{"status":"cancelled"}`))
	newRouter(svc, &model.Identity{ID: "client-joao"}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotUpdate == nil || svc.gotUpdate.Status != model.BookingCancelled {
		t.Errorf("unexpected update: %+v", svc.gotUpdate)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&mockBookingService{}, &model.Identity{ID: "client-joao"}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
