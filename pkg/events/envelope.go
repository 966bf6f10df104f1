package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
)

const envelopeVersion = 1

// Actor identifies who produced the event.
type Actor struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// Envelope is the stable wire shape for every published event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       enums.EventType `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Brand      string          `json:"brand,omitempty"`
	Actor      *Actor          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope marshals data into a fresh envelope. key is the aggregate id
// and is used as the partition/ordering key.
func NewEnvelope(eventType enums.EventType, key, brand string, actor *Actor, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Brand:      brand,
		Actor:      actor,
		Data:       raw,
	}, nil
}

// Attributes returns the transport headers attached to a message.
func (e Envelope) Attributes() map[string]string {
	attrs := map[string]string{
		"event_id":    e.EventID,
		"event_type":  string(e.Type),
		"key":         e.Key,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
	if e.Brand != "" {
		attrs["brand"] = e.Brand
	}
	return attrs
}

// Channel groups event types onto topics.
type Channel string

const (
	ChannelOrders    Channel = "orders"
	ChannelTelemetry Channel = "telemetry"
)

// ChannelFor routes an event type to its channel.
func ChannelFor(eventType enums.EventType) Channel {
	if eventType == enums.EventProductTracked {
		return ChannelTelemetry
	}
	return ChannelOrders
}

// Payloads.

type OrderPlaced struct {
	OrderID         uuid.UUID `json:"orderId"`
	UserID          uuid.UUID `json:"userId"`
	ItemCount       int       `json:"itemCount"`
	Subtotal        string    `json:"subtotal"`
	GrandTotal      string    `json:"grandTotal"`
	IsFreeGiftAdded bool      `json:"isFreeGiftAdded"`
}

type OrderStatusChanged struct {
	OrderID uuid.UUID `json:"orderId"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

type ProductTracked struct {
	ProductID uuid.UUID `json:"productId"`
	Event     string    `json:"event"`
}

type HamperCheckedOut struct {
	UserID     uuid.UUID   `json:"userId"`
	Occasion   string      `json:"occasion"`
	ProductIDs []uuid.UUID `json:"productIds"`
}
