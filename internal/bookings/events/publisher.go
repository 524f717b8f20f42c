// Package events publishes booking lifecycle events to Kafka.
package events

import (
	"context"
	"time"

	"servimarket/pkg/kafka"
	"servimarket/pkg/logger"
	"servimarket/pkg/metrics"
	"servimarket/pkg/middleware"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"

	SchemaVersion = "1"
	Source        = "servimarket-api"
)

type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	ProviderID     string    `json:"provider_id"`
	ServiceID      string    `json:"service_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	BookingDate    string    `json:"booking_date"`
	BookingTime    string    `json:"booking_time"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher sends booking events. A nil kafka publisher turns every publish
// into a counted no-op. Failures are logged and never returned: the booking
// is already stored.
type Publisher struct {
	publisher kafka.Publisher
	log       *logger.Logger
}

func NewPublisher(publisher kafka.Publisher, log *logger.Logger) *Publisher {
	return &Publisher{publisher: publisher, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event BookingEvent) {
	if p == nil || p.publisher == nil {
		metrics.RecordBookingEventSkipped(event.Type)
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "type", event.Type, "booking_id", event.BookingID, "error", err)
		metrics.RecordBookingEvent(event.Type, false)
		return
	}

	if err := p.publisher.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error_type", kafka.ClassifyError(err).String(),
			"error", err,
		)
		metrics.RecordBookingEvent(event.Type, false)
		return
	}

	metrics.RecordBookingEvent(event.Type, true)
}
