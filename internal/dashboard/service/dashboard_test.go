package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"servimarket/internal/dashboard/repository"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"

	"github.com/google/go-cmp/cmp"
)

const providerID = "mock-user-id"

type staticSession struct {
	snap session.Snapshot
}

func (s staticSession) Snapshot() session.Snapshot { return s.snap }

func signedIn(id string, role model.Role) staticSession {
	return staticSession{snap: session.Snapshot{
		User:    &model.Identity{ID: id},
		Profile: &model.Profile{ID: id, Role: role},
	}}
}

func newTestService(sessions session.Reader) DashboardService {
	client := query.New(query.WithBackend(query.NewMemoryBackend(query.Fixtures(providerID))))
	return NewDashboardService(repository.NewDashboardRepository(client), sessions, logger.Discard())
}

func statusOf(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return 0
}

func bookingIDs(bookings []*model.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestClient(t *testing.T) {
	tests := []struct {
		userID string
		want   []string
	}{
		{userID: "client-joao", want: []string{"booking-5", "booking-1"}},
		{userID: providerID, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			dash, err := newTestService(signedIn(tt.userID, model.RoleClient)).Client(context.Background(), tt.userID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, bookingIDs(dash.Bookings)); diff != "" {
				t.Errorf("bookings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProvider(t *testing.T) {
	dash, err := newTestService(signedIn(providerID, model.RoleProvider)).Provider(context.Background(), providerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dash.BusinessName != "Urban Cuts Luanda" {
		t.Errorf("expected business name, got %q", dash.BusinessName)
	}
	if diff := cmp.Diff([]string{"booking-3", "booking-5", "booking-1", "booking-6"}, bookingIDs(dash.Bookings)); diff != "" {
		t.Errorf("bookings mismatch (-want +got):\n%s", diff)
	}
	if len(dash.Services) != 3 {
		t.Errorf("expected 3 services, got %d", len(dash.Services))
	}

	want := ProviderStats{TotalBookings: 4, ConfirmedBookings: 2, PendingBookings: 1, Revenue: 11000}
	if diff := cmp.Diff(want, dash.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestProviderStats_UnknownServiceEarnsNothing(t *testing.T) {
	stats := providerStats(
		[]*model.Booking{
			{ServiceID: "gone", Status: model.BookingConfirmed},
			{ServiceID: "s1", Status: model.BookingConfirmed},
			{ServiceID: "s1", Status: model.BookingCancelled},
		},
		[]*model.Service{{ID: "s1", Price: 2500}},
	)

	want := ProviderStats{TotalBookings: 3, ConfirmedBookings: 2, Revenue: 2500}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAdmin(t *testing.T) {
	dash, err := newTestService(signedIn("admin-1", model.RoleAdmin)).Admin(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := AdminStats{TotalUsers: 5, TotalProviders: 2, TotalServices: 8, TotalBookings: 6}
	if diff := cmp.Diff(want, dash.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	var recent []string
	for _, p := range dash.RecentUsers {
		recent = append(recent, p.ID)
	}
	wantRecent := []string{"client-maria", "client-joao", "provider-cleanhome", providerID, "admin-1"}
	if diff := cmp.Diff(wantRecent, recent); diff != "" {
		t.Errorf("recent users mismatch (-want +got):\n%s", diff)
	}
}

func TestDashboards_RequireRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(DashboardService) error
		sess staticSession
	}{
		{
			name: "client without profile",
			sess: staticSession{snap: session.Snapshot{User: &model.Identity{ID: "u1"}}},
			call: func(s DashboardService) error { _, err := s.Client(ctx, "u1"); return err },
		},
		{
			name: "client asking for provider dashboard",
			sess: signedIn("client-joao", model.RoleClient),
			call: func(s DashboardService) error { _, err := s.Provider(ctx, "client-joao"); return err },
		},
		{
			name: "provider asking for admin dashboard",
			sess: signedIn(providerID, model.RoleProvider),
			call: func(s DashboardService) error { _, err := s.Admin(ctx, providerID); return err },
		},
		{
			name: "different identity",
			sess: signedIn("admin-1", model.RoleAdmin),
			call: func(s DashboardService) error { _, err := s.Admin(ctx, "someone-else"); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(tt.call(newTestService(tt.sess))); got != http.StatusForbidden {
				t.Errorf("expected 403, got %d", got)
			}
		})
	}
}
