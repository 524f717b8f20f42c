package repository

import (
	"context"
	"fmt"

	"servimarket/pkg/model"
	"servimarket/pkg/query"
)

type DashboardRepository interface {
	ConfirmedBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	BookingsByProvider(ctx context.Context, providerID string) ([]*model.Booking, error)
	ServicesByProvider(ctx context.Context, providerID string) ([]*model.Service, error)
	FindProviderDetails(ctx context.Context, providerID string) (*model.ProviderDetails, error)
	Count(ctx context.Context, table string, filters ...query.Filter) (int, error)
	RecentProfiles(ctx context.Context, n int) ([]*model.Profile, error)
}

type dashboardRepository struct {
	client *query.Client
}

func NewDashboardRepository(client *query.Client) DashboardRepository {
	return &dashboardRepository{client: client}
}

func (r *dashboardRepository) ConfirmedBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.client.From(query.TableBookings).
		Select("*").
		Eq("user_id", userID).
		Eq("status", string(model.BookingConfirmed)).
		Order("booking_date", query.Ascending).
		Execute(ctx).
		Decode(&bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed bookings: %w", err)
	}
	return bookings, nil
}

func (r *dashboardRepository) BookingsByProvider(ctx context.Context, providerID string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.client.From(query.TableBookings).
		Select("*").
		Eq("provider_id", providerID).
		Order("booking_date", query.Ascending).
		Execute(ctx).
		Decode(&bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}
	return bookings, nil
}

func (r *dashboardRepository) ServicesByProvider(ctx context.Context, providerID string) ([]*model.Service, error) {
	var services []*model.Service
	err := r.client.From(query.TableServices).
		Select("*").
		Eq("provider_id", providerID).
		Execute(ctx).
		Decode(&services)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider services: %w", err)
	}
	return services, nil
}

// FindProviderDetails returns nil without error when the provider has no
// details row yet.
func (r *dashboardRepository) FindProviderDetails(ctx context.Context, providerID string) (*model.ProviderDetails, error) {
	var details model.ProviderDetails
	found, err := r.client.From(query.TableProviderDetails).Select("*").Eq("id", providerID).Single(ctx).Decode(&details)
	if err != nil {
		return nil, fmt.Errorf("failed to find provider details: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &details, nil
}

// Count returns the exact number of rows in table matching filters.
func (r *dashboardRepository) Count(ctx context.Context, table string, filters ...query.Filter) (int, error) {
	q := r.client.From(table).Select("id", query.WithCount()).Limit(0)
	for _, f := range filters {
		q = q.Eq(f.Column, f.Value)
	}
	res := q.Execute(ctx)
	if res.Err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, res.Err)
	}
	return res.Count, nil
}

func (r *dashboardRepository) RecentProfiles(ctx context.Context, n int) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.client.From(query.TableProfiles).
		Select("*").
		Order("created_at", query.Descending).
		Limit(n).
		Execute(ctx).
		Decode(&profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent profiles: %w", err)
	}
	return profiles, nil
}
