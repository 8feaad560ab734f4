// Package rabbitmq publishes catalog events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

const defaultExchange = "catalog.events"

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends catalog events to a durable topic exchange. The routing key
// is the event type, e.g. "product.updated".
type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishes
	ch       channel
	exchange string
	log      zerolog.Logger
	now      func() time.Time
}

// NewPublisher dials RabbitMQ, opens a channel and declares the exchange.
func NewPublisher(cfg Config, log zerolog.Logger) (*Publisher, error) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("rabbitmq publisher ready")
	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log zerolog.Logger) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, log: log, now: time.Now}
}

// Publish marshals event to JSON and publishes it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, event domain.CatalogEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now().UTC(),
			MessageId:    event.Key() + ":" + event.OccurredAt.UTC().Format(time.RFC3339Nano),
			Type:         string(event.Type),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.log.Debug().Str("event", string(event.Type)).Int64("aggregate_id", event.AggregateID).Msg("catalog event published")
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
