// Package messaging fans order domain events out to other systems.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

var (
	_ ports.EventPublisher = (*RabbitPublisher)(nil)
	_ ports.EventPublisher = NoopPublisher{}
)

// DefaultExchange is the fanout exchange order events are published to.
const DefaultExchange = "orders.events"

// Envelope is the JSON body of every published event.
type Envelope struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"order_id"`
	MerchantRef string    `json:"merchant_ref,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Source      string    `json:"source,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEnvelope flattens a domain event into its wire form.
func NewEnvelope(event domain.Event) (Envelope, error) {
	env := Envelope{Event: event.EventName(), OccurredAt: event.OccurredAt().UTC()}
	switch e := event.(type) {
	case domain.OrderCreated:
		env.OrderID = e.OrderID
		env.MerchantRef = e.MerchantRef
	case domain.OrderStatusChanged:
		env.OrderID = e.OrderID
		env.From = string(e.FromStatus)
		env.To = string(e.ToStatus)
		env.Source = e.Source
	default:
		return Envelope{}, fmt.Errorf("unsupported event %T", event)
	}
	return env, nil
}

// RabbitPublisher publishes events to a durable fanout exchange, routed by event name.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	return ch.PublishWithContext(ctx, p.exchange, env.Event, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    env.OccurredAt,
		Type:         env.Event,
		Body:         body,
	})
}

func (p *RabbitPublisher) Close() error {
	return p.conn.Close()
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
