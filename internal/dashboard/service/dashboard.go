package service

import (
	"context"

	"servimarket/internal/dashboard/repository"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"

	"golang.org/x/sync/errgroup"
)

const recentProfilesLimit = 10

type ClientDashboard struct {
	Bookings []*model.Booking `json:"bookings"`
}

type ProviderStats struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	Revenue           float64 `json:"revenue"`
}

type ProviderDashboard struct {
	BusinessName string           `json:"business_name"`
	Bookings     []*model.Booking `json:"bookings"`
	Services     []*model.Service `json:"services"`
	Stats        ProviderStats    `json:"stats"`
}

type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalProviders int `json:"total_providers"`
	TotalServices  int `json:"total_services"`
	TotalBookings  int `json:"total_bookings"`
}

type AdminDashboard struct {
	Stats       AdminStats       `json:"stats"`
	RecentUsers []*model.Profile `json:"recent_users"`
}

type DashboardService interface {
	Client(ctx context.Context, userID string) (*ClientDashboard, error)
	Provider(ctx context.Context, userID string) (*ProviderDashboard, error)
	Admin(ctx context.Context, userID string) (*AdminDashboard, error)
}

type dashboardService struct {
	repo     repository.DashboardRepository
	sessions session.Reader
	log      *logger.Logger
}

func NewDashboardService(repo repository.DashboardRepository, sessions session.Reader, log *logger.Logger) DashboardService {
	return &dashboardService{
		repo:     repo,
		sessions: sessions,
		log:      log,
	}
}

func (s *dashboardService) Client(ctx context.Context, userID string) (*ClientDashboard, error) {
	snap := s.sessions.Snapshot()
	if !snap.SignedInAs(userID) || snap.Profile == nil {
		return nil, apperrors.Forbidden("A profile is required to view the dashboard")
	}

	bookings, err := s.repo.ConfirmedBookingsByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to load client dashboard", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}
	return &ClientDashboard{Bookings: bookings}, nil
}

func (s *dashboardService) Provider(ctx context.Context, userID string) (*ProviderDashboard, error) {
	snap := s.sessions.Snapshot()
	if !snap.SignedInAs(userID) || !snap.IsProvider() {
		return nil, apperrors.Forbidden("Only providers can view the provider dashboard")
	}

	var (
		bookings []*model.Booking
		services []*model.Service
		details  *model.ProviderDetails
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bookings, err = s.repo.BookingsByProvider(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		services, err = s.repo.ServicesByProvider(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		details, err = s.repo.FindProviderDetails(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to load provider dashboard", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	dash := &ProviderDashboard{
		Bookings: bookings,
		Services: services,
		Stats:    providerStats(bookings, services),
	}
	if details != nil {
		dash.BusinessName = details.BusinessName
	}
	return dash, nil
}

// providerStats counts bookings by status. Revenue is the price of the
// booked service summed over confirmed bookings.
func providerStats(bookings []*model.Booking, services []*model.Service) ProviderStats {
	prices := make(map[string]float64, len(services))
	for _, svc := range services {
		prices[svc.ID] = svc.Price
	}

	stats := ProviderStats{TotalBookings: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case model.BookingConfirmed:
			stats.ConfirmedBookings++
			stats.Revenue += prices[b.ServiceID]
		case model.BookingPending:
			stats.PendingBookings++
		}
	}
	return stats
}

func (s *dashboardService) Admin(ctx context.Context, userID string) (*AdminDashboard, error) {
	snap := s.sessions.Snapshot()
	if !snap.SignedInAs(userID) || !snap.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can view the admin dashboard")
	}

	var (
		stats  AdminStats
		recent []*model.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.repo.Count(gctx, query.TableProfiles)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProviders, err = s.repo.Count(gctx, query.TableProfiles, query.Filter{Column: "role", Value: string(model.RoleProvider)})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalServices, err = s.repo.Count(gctx, query.TableServices)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBookings, err = s.repo.Count(gctx, query.TableBookings)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.RecentProfiles(gctx, recentProfilesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to load admin dashboard", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	return &AdminDashboard{Stats: stats, RecentUsers: recent}, nil
}
