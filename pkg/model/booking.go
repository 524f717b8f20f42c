package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

const (
	BookingDateLayout = "2006-01-02"
	BookingTimeLayout = "15:04"
)

type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id" validate:"required"`
	ServiceID   string        `json:"service_id" validate:"required"`
	ProviderID  string        `json:"provider_id" validate:"required"`
	BookingDate string        `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime string        `json:"booking_time" validate:"required,datetime=15:04"`
	Status      BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Notes       string        `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
}

// StartsAt combines the booking date and time in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(BookingDateLayout+" "+BookingTimeLayout, b.BookingDate+" "+b.BookingTime, loc)
}

type BookingRequest struct {
	ServiceID   string `json:"service_id" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime string `json:"booking_time" validate:"required,datetime=15:04"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}
