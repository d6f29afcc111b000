package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Routing keys for the report event stream.
	RouteReportCreated   = "report.created"
	RouteReportStatus    = "report.status"
	RouteReportFlagged   = "report.flagged"
	RouteReportDeleted   = "report.deleted"
	RouteReportAfterImg  = "report.afterimage"
	RouteReportModerated = "report.moderated"
)

// Publisher pushes report lifecycle events to a durable direct exchange.
// A nil *Publisher is valid and drops every message, so callers don't
// have to guard the case where no broker is configured.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to the broker and declares the exchange.
func NewPublisher(amqpURL, exchangeName string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchangeName,
	}, nil
}

// Publish sends a JSON message to the exchange under the given routing key.
func (p *Publisher) Publish(routingKey string, message interface{}) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishAsync publishes in a goroutine and only logs failures. Handlers
// use it so a slow broker never delays an HTTP response.
func (p *Publisher) PublishAsync(routingKey string, message interface{}) {
	if p == nil {
		return
	}
	go func() {
		if err := p.Publish(routingKey, message); err != nil {
			log.Errorf("rabbitmq: publish %s: %v", routingKey, err)
		}
	}()
}

// IsConnected checks if the publisher is still connected.
func (p *Publisher) IsConnected() bool {
	if p == nil || p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed()
}

// Close closes the publisher channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var err error
	if p.channel != nil {
		if channelErr := p.channel.Close(); channelErr != nil {
			log.Errorf("Failed to close channel: %v", channelErr)
			err = channelErr
		}
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil {
			log.Errorf("Failed to close connection: %v", connErr)
			if err == nil {
				err = connErr
			}
		}
	}
	return err
}
