package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventReservationCreated = "reservation_created"
	EventReservationUpdated = "reservation_updated"
	EventReservationDeleted = "reservation_deleted"
	EventDeliveryManaged    = "delivery_managed"
)

type ReservationEvent struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	ReservationID    int64     `json:"reservation_id"`
	AreaID           int64     `json:"area_id"`
	UserID           string    `json:"user_id"`
	State            string    `json:"state"`
	DeliveryState    string    `json:"delivery_state"`
	DamagesPaymentID *int64    `json:"damages_payment_id,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// EventPublisher writes reservation lifecycle events keyed by reservation id.
type EventPublisher struct {
	producer publisher
	topic    string
}

func NewEventPublisher(producer publisher, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

func (p *EventPublisher) PublishReservationEvent(ctx context.Context, eventType string, r *domain.Reservation, damagesPaymentID *int64) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}
	event := ReservationEvent{
		EventID:          uuid.NewString(),
		Type:             eventType,
		ReservationID:    r.ID,
		AreaID:           r.AreaID,
		UserID:           r.UserID,
		State:            string(r.State),
		DeliveryState:    string(r.DeliveryState),
		DamagesPaymentID: damagesPaymentID,
		OccurredAt:       time.Now().UTC(),
	}
	return p.producer.Publish(ctx, p.topic, strconv.FormatInt(r.ID, 10), event)
}

// NotificationMessage is the payload of the notifications topic.
type NotificationMessage struct {
	EventID      string                               `json:"event_id"`
	Confirmation notification.ReservationConfirmation `json:"confirmation"`
}

type retryingPublisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error
}

const notificationAttempts = 3

// NotificationPublisher hands confirmations to the worker through Kafka.
type NotificationPublisher struct {
	producer retryingPublisher
	topic    string
}

func NewNotificationPublisher(producer retryingPublisher, topic string) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, topic: topic}
}

func (p *NotificationPublisher) SendReservationConfirmation(ctx context.Context, msg notification.ReservationConfirmation) notification.Result {
	payload := NotificationMessage{EventID: uuid.NewString(), Confirmation: msg}
	if err := p.producer.PublishWithRetry(ctx, p.topic, msg.ReservationNumber, payload, notificationAttempts); err != nil {
		return notification.Failed("notification not queued", domain.External("kafka", err))
	}
	return notification.Result{Success: true, Message: "notification queued on " + p.topic}
}

func DecodeNotification(msg kafka.Message) (NotificationMessage, error) {
	var n NotificationMessage
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return n, fmt.Errorf("decode notification %s: %w", string(msg.Key), err)
	}
	return n, nil
}

var _ notification.Gateway = (*NotificationPublisher)(nil)
