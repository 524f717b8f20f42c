package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "servimarket/internal/bookings/errors"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	FindBySlot(ctx context.Context, serviceID, date, at string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus, scope ...query.Filter) error
	FindService(ctx context.Context, serviceID string) (*model.Service, error)
}

type bookingRepository struct {
	client *query.Client
}

func NewBookingRepository(client *query.Client) BookingRepository {
	return &bookingRepository{client: client}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	row, err := query.ToRow(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}

	var created []*model.Booking
	if err := r.client.From(query.TableBookings).Insert(ctx, row).Decode(&created); err != nil {
		if errors.Is(err, query.ErrDuplicate) {
			return nil, bookingserrors.ErrTimeConflict
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	if len(created) == 0 {
		return booking, nil
	}
	return created[0], nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	found, err := r.client.From(query.TableBookings).Select("*").Eq("id", id).Single(ctx).Decode(&booking)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if !found {
		return nil, bookingserrors.ErrNotFound
	}
	return &booking, nil
}

// FindByUser returns the bookings made by userID, earliest date first.
func (r *bookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.client.From(query.TableBookings).
		Select("*").
		Eq("user_id", userID).
		Order("booking_date", query.Ascending).
		Execute(ctx).
		Decode(&bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) FindBySlot(ctx context.Context, serviceID, date, at string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.client.From(query.TableBookings).
		Select("*").
		Eq("service_id", serviceID).
		Eq("booking_date", date).
		Eq("booking_time", at).
		Execute(ctx).
		Decode(&bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for slot: %w", err)
	}
	return bookings, nil
}

// UpdateStatus sets the status of booking id. scope narrows the match
// further, so a caller can only touch bookings it is party to.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, scope ...query.Filter) error {
	q := r.client.From(query.TableBookings).
		Update(query.Row{"status": string(status)}).
		Eq("id", id)
	for _, f := range scope {
		q = q.Eq(f.Column, f.Value)
	}

	res := q.Execute(ctx)
	if res.Err != nil {
		if errors.Is(res.Err, query.ErrDuplicate) {
			return bookingserrors.ErrTimeConflict
		}
		return fmt.Errorf("failed to update booking status: %w", res.Err)
	}
	if r.client.Mode() == query.WritePersist && res.Count == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) FindService(ctx context.Context, serviceID string) (*model.Service, error) {
	var svc model.Service
	found, err := r.client.From(query.TableServices).Select("*").Eq("id", serviceID).Single(ctx).Decode(&svc)
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	if !found {
		return nil, bookingserrors.ErrServiceNotFound
	}
	return &svc, nil
}
