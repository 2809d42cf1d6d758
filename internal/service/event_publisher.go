package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/pkg/kafka"
	"github.com/gatherly-app/backend-rsvp/pkg/logger"
)

// EventPublisher publishes reservation lifecycle events
type EventPublisher interface {
	PublishRSVPConfirmed(ctx context.Context, r *domain.Reservation) error
	PublishRSVPWaitlisted(ctx context.Context, r *domain.Reservation) error
	PublishRSVPUpdated(ctx context.Context, r *domain.Reservation) error
	PublishRSVPCancelled(ctx context.Context, r *domain.Reservation) error
	PublishRSVPPromoted(ctx context.Context, r *domain.Reservation) error
	Close()
}

// KafkaEventPublisher publishes lifecycle events to Kafka
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed publisher
func NewKafkaEventPublisher(producer *kafka.Producer, topic string) *KafkaEventPublisher {
	if topic == "" {
		topic = "rsvp.lifecycle"
	}
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *KafkaEventPublisher) PublishRSVPConfirmed(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, domain.RSVPEventConfirmed, r)
}

func (p *KafkaEventPublisher) PublishRSVPWaitlisted(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, domain.RSVPEventWaitlisted, r)
}

func (p *KafkaEventPublisher) PublishRSVPUpdated(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, domain.RSVPEventUpdated, r)
}

func (p *KafkaEventPublisher) PublishRSVPCancelled(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, domain.RSVPEventCancelled, r)
}

func (p *KafkaEventPublisher) PublishRSVPPromoted(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, domain.RSVPEventPromoted, r)
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType domain.RSVPEventType, r *domain.Reservation) error {
	evt := domain.NewRSVPEvent(eventType, r, uuid.New().String())

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Keyed by event ID so all reservations of one event stay ordered.
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(evt.Key()),
		Value: value,
	}

	// Async with logging: lifecycle events are best-effort, the booking
	// outcome is already durable in Postgres.
	p.producer.ProduceAsync(ctx, &msg, func(err error) {
		if err != nil {
			logger.Get().Error("failed to publish rsvp event",
				zap.String("event_type", string(eventType)),
				zap.String("reservation_id", r.ID),
				zap.Error(err),
			)
		}
	})
	return nil
}

func (p *KafkaEventPublisher) Close() {
	p.producer.Close()
}

// NoOpEventPublisher discards all events. Used in tests and when Kafka
// is disabled.
type NoOpEventPublisher struct{}

func NewNoOpEventPublisher() *NoOpEventPublisher { return &NoOpEventPublisher{} }

func (p *NoOpEventPublisher) PublishRSVPConfirmed(ctx context.Context, r *domain.Reservation) error {
	return nil
}
func (p *NoOpEventPublisher) PublishRSVPWaitlisted(ctx context.Context, r *domain.Reservation) error {
	return nil
}
func (p *NoOpEventPublisher) PublishRSVPUpdated(ctx context.Context, r *domain.Reservation) error {
	return nil
}
func (p *NoOpEventPublisher) PublishRSVPCancelled(ctx context.Context, r *domain.Reservation) error {
	return nil
}
func (p *NoOpEventPublisher) PublishRSVPPromoted(ctx context.Context, r *domain.Reservation) error {
	return nil
}
func (p *NoOpEventPublisher) Close() {}
