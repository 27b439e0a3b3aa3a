package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ErrMalformedMessage marks deliveries that can never be processed; they are
// rejected without requeue.
var ErrMalformedMessage = errors.New("malformed message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     logrus.FieldLogger
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("queue name is required")
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

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log = log.WithField("queue", cfg.Queue)
	log.Info("RabbitMQ client connected and queue declared")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a JSON event body to the event queue. routingKey is the
// event name and travels as the message type.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		"",      // exchange: default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         routingKey,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.WithField("event", routingKey).Debug("Sent event")
	return nil
}

// ConsumeEvents delivers queued events to handler until ctx is cancelled or
// the channel closes. Deliveries are acked on success, requeued on failure and
// dropped when the handler reports ErrMalformedMessage.
func (c *Client) ConsumeEvents(ctx context.Context, handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("Waiting for catalog events")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.log.Warn("Event delivery channel closed")
					return
				}
				c.dispatch(msg, handler)
			}
		}
	}()

	return nil
}

func (c *Client) dispatch(msg amqp.Delivery, handler func(msg amqp.Delivery) error) {
	entry := c.log.WithField("delivery_tag", msg.DeliveryTag)
	err := handler(msg)
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			entry.WithError(ackErr).Error("Error acking message")
		}
		return
	}

	requeue := !errors.Is(err, ErrMalformedMessage)
	entry.WithError(err).WithField("requeue", requeue).Warn("Error processing message")
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		entry.WithError(nackErr).Error("Error nacking message")
	}
}

// LogEventHandler returns a handler that logs every received catalog event.
func LogEventHandler(log logrus.FieldLogger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event struct {
			Event    string `json:"event"`
			ID       string `json:"id"`
			ParentID string `json:"parentId"`
		}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if event.Event == "" || event.ID == "" {
			return fmt.Errorf("%w: event name and id are required", ErrMalformedMessage)
		}

		log.WithFields(logrus.Fields{
			"event":     event.Event,
			"id":        event.ID,
			"parent_id": event.ParentID,
		}).Info("Received catalog event")
		return nil
	}
}
