package models

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusCompleted  OutboxStatus = "completed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// EventDeliveryStatusChanged is the event type emitted when an order's
// delivery status is updated through the API.
const EventDeliveryStatusChanged = "order_delivery_status_changed"

// OutboxMessage represents a message to be published from the outbox table
type OutboxMessage struct {
	ID                 int64        `db:"id" json:"id"`
	AggregateType      string       `db:"aggregate_type" json:"aggregate_type"`
	AggregateID        string       `db:"aggregate_id" json:"aggregate_id"`
	EventType          string       `db:"event_type" json:"event_type"`
	Payload            []byte       `db:"payload" json:"payload"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	ProcessedAt        *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	ProcessingAttempts int          `db:"processing_attempts" json:"processing_attempts"`
	LastError          *string      `db:"last_error" json:"last_error,omitempty"`
	Status             OutboxStatus `db:"status" json:"status"`
}

// OutboxMessageEvent represents the event data in the outbox message
type OutboxMessageEvent struct {
	EventType   string      `json:"event_type"`
	EventID     string      `json:"event_id"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Data        interface{} `json:"data"`
}

// NewDeliveryStatusChangedEvent creates the outbox message for a confirmed
// delivery-status transition
func NewDeliveryStatusChangedEvent(order *Order, oldStatus DeliveryStatus) (*OutboxMessage, error) {
	event := OutboxMessageEvent{
		EventType:   EventDeliveryStatusChanged,
		EventID:     GenerateID("evt"),
		AggregateID: order.ID,
		OccurredAt:  GetCurrentTime(),
		Data: map[string]interface{}{
			"order_id":            order.ID,
			"user":                order.User,
			"old_delivery_status": oldStatus,
			"new_delivery_status": order.DeliveryStatus,
		},
	}

	payload, err := json.Marshal(event)

	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     GetCurrentTime(),
		Status:        OutboxStatusPending,
	}, nil
}
