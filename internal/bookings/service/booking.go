package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"servimarket/internal/bookings/events"
	bookingserrors "servimarket/internal/bookings/errors"
	"servimarket/internal/bookings/repository"
	"servimarket/internal/bookings/validator"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
	"servimarket/pkg/validation"

	"github.com/google/uuid"
)

// BookingGroups splits a user's bookings the way the bookings page lists them.
type BookingGroups struct {
	Upcoming  []*model.Booking `json:"upcoming"`
	Past      []*model.Booking `json:"past"`
	Cancelled []*model.Booking `json:"cancelled"`
}

type BookingService interface {
	Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, userID, id string) (*model.Booking, error)
	ListMine(ctx context.Context, userID string) (*BookingGroups, error)
	UpdateStatus(ctx context.Context, userID, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	sessions  session.Reader
	validator *validator.BookingValidator
	events    *events.Publisher
	loc       *time.Location
	slots     *slotLocks
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewBookingService(
	repo repository.BookingRepository,
	sessions session.Reader,
	validator *validator.BookingValidator,
	publisher *events.Publisher,
	loc *time.Location,
	log *logger.Logger,
) BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &bookingService{
		repo:      repo,
		sessions:  sessions,
		validator: validator,
		events:    publisher,
		loc:       loc,
		slots:     newSlotLocks(),
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *bookingService) Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error) {
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, validation.AsAppError("Invalid booking", err)
	}

	if !s.sessions.Snapshot().SignedInAs(userID) {
		return nil, apperrors.Forbidden("Bookings can only be made for the signed-in user")
	}

	svc, err := s.repo.FindService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", req.ServiceID)
		}
		s.log.Error("failed to load booked service", "service_id", req.ServiceID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	if svc.ProviderID == userID {
		return nil, apperrors.Forbidden("Providers cannot book their own services")
	}

	booking := &model.Booking{
		ID:          s.newID(),
		UserID:      userID,
		ServiceID:   svc.ID,
		ProviderID:  svc.ProviderID,
		BookingDate: req.BookingDate,
		BookingTime: req.BookingTime,
		Status:      model.BookingPending,
		Notes:       req.Notes,
	}
	if err := s.validator.Validate(booking); err != nil {
		return nil, validation.AsAppError("Invalid booking", err)
	}

	startsAt, err := booking.StartsAt(s.loc)
	if err != nil {
		return nil, validation.AsAppError("Invalid booking", validation.Field("booking_date", "must be a valid date and time"))
	}
	if startsAt.Before(s.now()) {
		return nil, validation.AsAppError("Invalid booking", validation.Field("booking_date", bookingserrors.ErrStartInPast.Error()))
	}

	release, err := s.lockSlot(ctx, booking)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.checkSlot(ctx, booking, ""); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrTimeConflict) {
			return nil, apperrors.Conflict(bookingserrors.ErrTimeConflict.Error())
		}
		s.log.Error("failed to create booking", "service_id", booking.ServiceID, "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.log.Info("booking created", "booking_id", created.ID, "service_id", created.ServiceID, "user_id", userID)
	s.events.Publish(ctx, s.event(events.TypeBookingCreated, created, ""))
	return created, nil
}

// lockSlot holds the booking's slot until release is called, so checking
// the slot and writing the booking happen as one step.
func (s *bookingService) lockSlot(ctx context.Context, booking *model.Booking) (func(), error) {
	release, err := s.slots.acquire(ctx, slotKey(booking.ServiceID, booking.BookingDate, booking.BookingTime))
	if err != nil {
		s.log.Warn("gave up waiting for booking slot", "service_id", booking.ServiceID, "date", booking.BookingDate, "time", booking.BookingTime, "error", err)
		return nil, apperrors.Timeout("Timed out waiting for the booking slot")
	}
	return release, nil
}

// checkSlot fails with a conflict when another non-cancelled booking holds
// the slot. except skips the booking being changed.
func (s *bookingService) checkSlot(ctx context.Context, booking *model.Booking, except string) error {
	taken, err := s.repo.FindBySlot(ctx, booking.ServiceID, booking.BookingDate, booking.BookingTime)
	if err != nil {
		s.log.Error("failed to check booking slot", "service_id", booking.ServiceID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}
	for _, b := range taken {
		if b.ID != except && b.Status != model.BookingCancelled {
			return apperrors.Conflict(bookingserrors.ErrTimeConflict.Error())
		}
	}
	return nil
}

// GetByID returns a booking the caller is party to. Admins see every booking.
func (s *bookingService) GetByID(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := s.sessions.Snapshot()
	if booking.UserID == userID || booking.ProviderID == userID || (snap.SignedInAs(userID) && snap.IsAdmin()) {
		return booking, nil
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (s *bookingService) ListMine(ctx context.Context, userID string) (*BookingGroups, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to list bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to list bookings", err)
	}

	now := s.now()
	groups := &BookingGroups{
		Upcoming:  []*model.Booking{},
		Past:      []*model.Booking{},
		Cancelled: []*model.Booking{},
	}
	for _, b := range bookings {
		if b.Status == model.BookingCancelled {
			groups.Cancelled = append(groups.Cancelled, b)
			continue
		}

		// An unparseable date counts as already past.
		startsAt, err := b.StartsAt(s.loc)
		inFuture := err == nil && !startsAt.Before(now)

		switch {
		case inFuture && (b.Status == model.BookingPending || b.Status == model.BookingConfirmed):
			groups.Upcoming = append(groups.Upcoming, b)
		case b.Status == model.BookingCompleted || !inFuture:
			groups.Past = append(groups.Past, b)
		}
	}
	return groups, nil
}

// UpdateStatus applies a status change. The booking's provider may set any
// status, the client who made it may only cancel, admins may do anything.
func (s *bookingService) UpdateStatus(ctx context.Context, userID, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, validation.AsAppError("Invalid status", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := s.sessions.Snapshot()
	signedIn := snap.SignedInAs(userID)

	var scope []query.Filter
	switch {
	case signedIn && booking.ProviderID == userID:
		scope = []query.Filter{{Column: "provider_id", Value: userID}}
	case booking.UserID == userID:
		if update.Status != model.BookingCancelled {
			return nil, apperrors.Forbidden(bookingserrors.ErrClientStatusChange.Error())
		}
		scope = []query.Filter{{Column: "user_id", Value: userID}}
	case signedIn && snap.IsAdmin():
	default:
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	if booking.Status == update.Status {
		return booking, nil
	}

	// Reviving a cancelled booking claims its slot again.
	if booking.Status == model.BookingCancelled {
		release, err := s.lockSlot(ctx, booking)
		if err != nil {
			return nil, err
		}
		defer release()

		if err := s.checkSlot(ctx, booking, booking.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, update.Status, scope...); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrTimeConflict) {
			return nil, apperrors.Conflict(bookingserrors.ErrTimeConflict.Error())
		}
		s.log.Error("failed to update booking status", "booking_id", id, "status", update.Status, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	previous := booking.Status
	booking.Status = update.Status
	s.log.Info("booking status changed", "booking_id", id, "from", previous, "to", booking.Status, "by", userID)
	s.events.Publish(ctx, s.event(events.TypeBookingStatusChanged, booking, previous))
	return booking, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.log.Error("failed to load booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	return booking, nil
}

func (s *bookingService) event(eventType string, b *model.Booking, previous model.BookingStatus) events.BookingEvent {
	return events.BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		UserID:         b.UserID,
		ProviderID:     b.ProviderID,
		ServiceID:      b.ServiceID,
		Status:         string(b.Status),
		PreviousStatus: string(previous),
		BookingDate:    b.BookingDate,
		BookingTime:    b.BookingTime,
		OccurredAt:     s.now().UTC(),
	}
}
