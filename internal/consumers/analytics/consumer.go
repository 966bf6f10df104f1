// Package analytics streams storefront events into the BigQuery warehouse.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

const consumerName = "analytics"

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type claimer interface {
	Claim(ctx context.Context, consumer, eventID string) (bool, error)
	Release(ctx context.Context, consumer, eventID string) error
}

// Tables names the destination of each event family.
type Tables struct {
	OrderEvents     string
	TelemetryEvents string
}

// Consumer writes order and telemetry events to BigQuery at most once per
// event id.
type Consumer struct {
	client tableInserter
	tables Tables
	guard  claimer
	logg   *logger.Logger
}

func NewConsumer(client tableInserter, tables Tables, guard claimer, logg *logger.Logger) (*Consumer, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	tables.OrderEvents = strings.TrimSpace(tables.OrderEvents)
	tables.TelemetryEvents = strings.TrimSpace(tables.TelemetryEvents)
	if tables.OrderEvents == "" && tables.TelemetryEvents == "" {
		return nil, fmt.Errorf("bigquery table name required")
	}
	if guard == nil {
		return nil, fmt.Errorf("dedupe guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{client: client, tables: tables, guard: guard, logg: logg}, nil
}

// Handle ingests env when its type has a destination table. Events without
// one are acknowledged and skipped.
func (c *Consumer) Handle(ctx context.Context, env events.Envelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   env.EventID,
		"event_type": env.Type,
		"brand":      env.Brand,
	})

	table, row, err := c.route(env)
	if err != nil {
		// a payload we cannot read will not improve on redelivery
		c.logg.WarnErr(logCtx, "skipping unreadable analytics event", err)
		return nil
	}
	if table == "" {
		c.logg.Debug(logCtx, "event not handled by analytics consumer")
		return nil
	}

	first, err := c.guard.Claim(ctx, consumerName, env.EventID)
	if err != nil {
		return fmt.Errorf("dedupe claim: %w", err)
	}
	if !first {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	if err := c.client.InsertRows(ctx, table, []any{row}); err != nil {
		if rerr := c.guard.Release(ctx, consumerName, env.EventID); rerr != nil {
			c.logg.WarnErr(logCtx, "releasing dedupe claim", rerr)
		}
		return fmt.Errorf("insert %s row: %w", table, err)
	}

	c.logg.Info(logCtx, "analytics event ingested")
	return nil
}

func (c *Consumer) route(env events.Envelope) (string, any, error) {
	switch env.Type {
	case enums.EventOrderPlaced, enums.EventOrderStatusChanged, enums.EventHamperCheckedOut:
		if c.tables.OrderEvents == "" {
			return "", nil, nil
		}
		row, err := buildOrderRow(env)
		return c.tables.OrderEvents, row, err
	case enums.EventProductTracked:
		if c.tables.TelemetryEvents == "" {
			return "", nil, nil
		}
		row, err := buildTelemetryRow(env)
		return c.tables.TelemetryEvents, row, err
	}
	return "", nil, nil
}

type orderEventRow struct {
	EventID         string               `bigquery:"event_id"`
	EventType       string               `bigquery:"event_type"`
	OccurredAt      time.Time            `bigquery:"occurred_at"`
	Brand           cbigquery.NullString `bigquery:"brand"`
	OrderID         cbigquery.NullString `bigquery:"order_id"`
	UserID          cbigquery.NullString `bigquery:"user_id"`
	ActorRole       cbigquery.NullString `bigquery:"actor_role"`
	Status          cbigquery.NullString `bigquery:"status"`
	Subtotal        cbigquery.NullString `bigquery:"subtotal"`
	GrandTotal      cbigquery.NullString `bigquery:"grand_total"`
	ItemCount       cbigquery.NullInt64  `bigquery:"item_count"`
	IsFreeGiftAdded cbigquery.NullBool   `bigquery:"is_free_gift_added"`
	Payload         cbigquery.NullJSON   `bigquery:"payload"`
}

type orderPayload struct {
	OrderID         string `json:"orderId"`
	UserID          string `json:"userId"`
	ItemCount       *int   `json:"itemCount"`
	Subtotal        string `json:"subtotal"`
	GrandTotal      string `json:"grandTotal"`
	IsFreeGiftAdded *bool  `json:"isFreeGiftAdded"`
	To              string `json:"to"`
}

func buildOrderRow(env events.Envelope) (*orderEventRow, error) {
	var payload orderPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}

	row := &orderEventRow{
		EventID:    env.EventID,
		EventType:  string(env.Type),
		OccurredAt: env.OccurredAt,
		Brand:      nullString(env.Brand),
		OrderID:    nullString(payload.OrderID),
		UserID:     nullString(payload.UserID),
		Status:     nullString(payload.To),
		Subtotal:   nullString(payload.Subtotal),
		GrandTotal: nullString(payload.GrandTotal),
		Payload:    nullJSON(env.Data),
	}
	if env.Type == enums.EventOrderPlaced {
		row.Status = nullString(string(enums.OrderStatusPlaced))
	}
	if env.Actor != nil {
		row.ActorRole = nullString(env.Actor.Role)
		if !row.UserID.Valid {
			row.UserID = nullString(env.Actor.UserID.String())
		}
	}
	if payload.ItemCount != nil {
		row.ItemCount = cbigquery.NullInt64{Int64: int64(*payload.ItemCount), Valid: true}
	}
	if payload.IsFreeGiftAdded != nil {
		row.IsFreeGiftAdded = cbigquery.NullBool{Bool: *payload.IsFreeGiftAdded, Valid: true}
	}
	return row, nil
}

type telemetryEventRow struct {
	EventID    string               `bigquery:"event_id"`
	OccurredAt time.Time            `bigquery:"occurred_at"`
	ProductID  string               `bigquery:"product_id"`
	Event      string               `bigquery:"event"`
	Brand      cbigquery.NullString `bigquery:"brand"`
}

func buildTelemetryRow(env events.Envelope) (*telemetryEventRow, error) {
	var payload events.ProductTracked
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	event, err := enums.ParseTrackEvent(payload.Event)
	if err != nil {
		return nil, err
	}
	return &telemetryEventRow{
		EventID:    env.EventID,
		OccurredAt: env.OccurredAt,
		ProductID:  payload.ProductID.String(),
		Event:      string(event),
		Brand:      nullString(env.Brand),
	}, nil
}

func nullString(value string) cbigquery.NullString {
	trimmed := strings.TrimSpace(value)
	return cbigquery.NullString{StringVal: trimmed, Valid: trimmed != ""}
}

func nullJSON(raw json.RawMessage) cbigquery.NullJSON {
	if len(raw) == 0 {
		return cbigquery.NullJSON{}
	}
	return cbigquery.NullJSON{JSONVal: string(raw), Valid: true}
}
