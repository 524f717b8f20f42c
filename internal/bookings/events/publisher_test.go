package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"servimarket/pkg/kafka"
	"servimarket/pkg/logger"
	"servimarket/pkg/middleware"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testEvent() BookingEvent {
	return BookingEvent{
		Type:        TypeBookingCreated,
		BookingID:   "booking-9",
		UserID:      "client-joao",
		ProviderID:  "mock-user-id",
		ServiceID:   "1",
		Status:      "pending",
		BookingDate: "2026-11-20",
		BookingTime: "09:00",
		OccurredAt:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublish_BuildsMessage(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewPublisher(rec, logger.Discard())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	p.Publish(ctx, testEvent())

	if len(rec.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(rec.msgs))
	}
	msg := rec.msgs[0]
	if msg.Key != "booking-9" {
		t.Errorf("expected key booking-9, got %q", msg.Key)
	}
	if msg.GetEventType() != TypeBookingCreated {
		t.Errorf("expected event type %s, got %q", TypeBookingCreated, msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-123" {
		t.Errorf("expected correlation id req-123, got %q", msg.GetCorrelationID())
	}
	if msg.Headers[kafka.HeaderSource] != Source || msg.Headers[kafka.HeaderSchemaVersion] != SchemaVersion {
		t.Errorf("unexpected headers: %v", msg.Headers)
	}
	if msg.GetEventID() == "" {
		t.Error("expected an event id")
	}

	var decoded BookingEvent
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("failed to decode value: %v", err)
	}
	if decoded != testEvent() {
		t.Errorf("payload mismatch: %+v", decoded)
	}
}

func TestPublish_FailuresAreSwallowed(t *testing.T) {
	rec := &recordingPublisher{err: kafka.NewTransientError("broker down", errors.New("dial tcp"))}
	p := NewPublisher(rec, logger.Discard())

	p.Publish(context.Background(), testEvent())

	if len(rec.msgs) != 0 {
		t.Errorf("expected nothing recorded, got %d", len(rec.msgs))
	}
}

func TestPublish_WithoutBroker(t *testing.T) {
	NewPublisher(nil, logger.Discard()).Publish(context.Background(), testEvent())

	var p *Publisher
	p.Publish(context.Background(), testEvent())
}
