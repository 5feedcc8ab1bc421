package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

// Exchange and queue topology. Fixed names shared by all services.
const (
	ExchangeEvents   = "device.events"
	ExchangeCommands = "device.commands"
	ExchangeData     = "device.data"

	QueueCommandDispatch = "device.commands.dispatch"
	QueueCommandAck      = "device.commands.ack"
)

// Envelope is the JSON message body used on every exchange
type Envelope struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	DroneID   uint            `json:"drone_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// CommandAck is the payload drones publish after executing a command
type CommandAck struct {
	CommandID string `json:"command_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// Client wraps an AMQP connection and channel
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect creates an AMQP client from AMQP_URL.
// Returns nil (messaging disabled) if AMQP_URL is not set.
func Connect() (*Client, error) {
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	return &Client{conn: conn, ch: ch}, nil
}

// Close closes the channel and connection
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// DeclareTopology declares the exchanges and queues all services share.
// Safe to call from every service on startup; declarations are idempotent.
func (c *Client) DeclareTopology() error {
	if c == nil {
		return nil
	}

	for _, exchange := range []string{ExchangeEvents, ExchangeCommands, ExchangeData} {
		if err := c.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}

	queues := []struct {
		name     string
		exchange string
		key      string
	}{
		{QueueCommandDispatch, ExchangeCommands, "command.#"},
		{QueueCommandAck, ExchangeEvents, "event.command_ack"},
	}
	for _, q := range queues {
		if _, err := c.ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
		}
		if err := c.ch.QueueBind(q.name, q.key, q.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", q.name, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, exchange, routingKey string, env Envelope) error {
	if c == nil {
		return nil
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	err = c.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   env.Timestamp,
		MessageId:   env.ID,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s (%s): %w", exchange, routingKey, err)
	}

	metrics.MQPublishesTotal.WithLabelValues(exchange).Inc()
	return nil
}

// PublishCommand publishes a dispatched command to the device.commands
// exchange with routing key "command.<type>".
func (c *Client) PublishCommand(ctx context.Context, command *model.DroneCommand) error {
	payload, err := json.Marshal(command)
	if err != nil {
		return err
	}

	return c.publish(ctx, ExchangeCommands, CommandRoutingKey(command.CommandType), Envelope{
		ID:        command.ID,
		Kind:      "command",
		DroneID:   command.DroneID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// PublishEvent publishes a domain event to device.events with routing key
// "event.<kind>".
func (c *Client) PublishEvent(ctx context.Context, id, kind string, droneID uint, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return c.publish(ctx, ExchangeEvents, "event."+kind, Envelope{
		ID:        id,
		Kind:      kind,
		DroneID:   droneID,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	})
}

// PublishTelemetry publishes a telemetry sample to device.data with routing
// key "data.<kind>".
func (c *Client) PublishTelemetry(ctx context.Context, id, kind string, droneID uint, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return c.publish(ctx, ExchangeData, "data."+kind, Envelope{
		ID:        id,
		Kind:      kind,
		DroneID:   droneID,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	})
}

// CommandRoutingKey returns the routing key used for a command type
func CommandRoutingKey(t model.CommandType) string {
	return "command." + t.String()
}

// Handler processes one consumed envelope. Returning an error nacks the
// delivery without requeue.
type Handler func(ctx context.Context, env Envelope) error

// Consume runs a consumer loop on the named queue until ctx is cancelled.
// One goroutine per call; failures on a single delivery never stop the loop.
func (c *Client) Consume(ctx context.Context, queue string, handler Handler) error {
	if c == nil {
		return nil
	}

	deliveries, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consumer on %s: %w", queue, err)
	}

	logger := log.WithComponent("mq")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					logger.Warn().Str("queue", queue).Msg("consumer channel closed")
					return
				}

				var env Envelope
				if err := json.Unmarshal(delivery.Body, &env); err != nil {
					logger.Error().Err(err).Str("queue", queue).Msg("discarding malformed message")
					_ = delivery.Nack(false, false)
					metrics.MQConsumedTotal.WithLabelValues(queue, "malformed").Inc()
					continue
				}

				if err := handler(ctx, env); err != nil {
					logger.Error().Err(err).Str("queue", queue).Str("message_id", env.ID).Msg("handler failed")
					_ = delivery.Nack(false, false)
					metrics.MQConsumedTotal.WithLabelValues(queue, "error").Inc()
					continue
				}

				_ = delivery.Ack(false)
				metrics.MQConsumedTotal.WithLabelValues(queue, "ok").Inc()
			}
		}
	}()

	return nil
}
