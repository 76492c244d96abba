// Package events publishes domain events to RabbitMQ.
// file: events/rabbit.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"conference-desk/logger"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Rabbit publishes JSON events to a durable topic exchange.
type Rabbit struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  channel
	exchange string
	now      func() time.Time
}

// NewRabbit dials url and declares exchange as a durable topic exchange.
func NewRabbit(url, exchange string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to RabbitMQ")
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		logger.Error().Err(err).Msg("failed to declare exchange")
		return nil, err
	}

	logger.Info().Str("exchange", exchange).Msg("RabbitMQ initialized")
	r := newRabbit(ch, exchange)
	r.conn = conn
	return r, nil
}

func newRabbit(ch channel, exchange string) *Rabbit {
	return &Rabbit{channel: ch, exchange: exchange, now: time.Now}
}

// Publish sends payload as JSON under routingKey.
func (r *Rabbit) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.channel.PublishWithContext(ctx,
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    r.now(),
		},
	)
	if err != nil {
		logger.Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish message to RabbitMQ")
		return err
	}
	logger.Debug().Str("exchange", r.exchange).Str("routing_key", routingKey).Msg("message published")
	return nil
}

// Close releases the channel and connection.
func (r *Rabbit) Close() {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
	logger.Info().Msg("RabbitMQ connection closed")
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) error { return nil }

func (Noop) Close() {}
