package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	prefetchCount = 50
	maxBackoff    = 30 * time.Second
)

type EnvelopeHandler func(ctx context.Context, env Envelope) error

// Consumer reads relayed events from the queue until its context ends,
// reconnecting with exponential backoff.
type Consumer struct {
	url     string
	queue   string
	logger  *slog.Logger
	handler EnvelopeHandler
}

func NewConsumer(url, queue string, logger *slog.Logger, handler EnvelopeHandler) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	c := &Consumer{url: url, queue: queue, logger: logger, handler: handler}
	if c.handler == nil {
		c.handler = c.logEnvelope
	}
	return c
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("consumer: loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		c.logger.Warn("consumer: set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.Info("consumer: waiting for events", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery acks handled messages. Undecodable messages are dropped and
// handler failures are requeued once; a redelivered failure is dropped too.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	env, err := DecodeEnvelope(d.Body)
	if err != nil {
		c.logger.Error("consumer: rejecting malformed message", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, env); err != nil {
		c.logger.Error("consumer: handler failed",
			"event_type", env.Type,
			"event_id", env.ID,
			"redelivered", d.Redelivered,
			"error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) logEnvelope(ctx context.Context, env Envelope) error {
	c.logger.InfoContext(ctx, "domain event",
		"event_type", env.Type,
		"event_id", env.ID,
		"occurred_at", env.OccurredAt,
		"data", env.Data)
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
