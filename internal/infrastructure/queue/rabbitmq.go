package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
)

type amqpChannel interface {
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	Ack(tag uint64, multiple bool) error
}

// RabbitMQ reads work items from a durable RabbitMQ queue with manual acks.
// Unacknowledged deliveries return to the queue when the channel closes, so
// the visibility timeout has no equivalent here.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
}

var _ ports.Queue = (*RabbitMQ)(nil)

// DialRabbitMQ connects with retries and declares the queue.
func DialRabbitMQ(ctx context.Context, url, queueName string, attempts int, delay time.Duration, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := connectWithRetry(ctx, url, attempts, delay, logger)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &RabbitMQ{conn: conn, channel: ch, queue: queueName}, nil
}

func connectWithRetry(ctx context.Context, url string, attempts int, delay time.Duration, logger *slog.Logger) (*amqp.Connection, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if logger != nil {
			logger.WarnContext(ctx, "rabbitmq connect failed", "attempt", i, "of", attempts, "error", err)
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", attempts, err)
}

// Receive drains up to maxMessages ready deliveries without waiting for more.
func (q *RabbitMQ) Receive(ctx context.Context, maxMessages int, _, _ time.Duration) ([]domain.QueueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}

	var messages []domain.QueueMessage
	for len(messages) < maxMessages {
		if err := ctx.Err(); err != nil {
			return messages, err
		}
		d, ok, err := q.channel.Get(q.queue, false)
		if err != nil {
			return messages, fmt.Errorf("rabbitmq get: %w", err)
		}
		if !ok {
			break
		}
		messages = append(messages, domain.QueueMessage{
			Handle: strconv.FormatUint(d.DeliveryTag, 10),
			Body:   d.Body,
		})
	}
	return messages, nil
}

// Delete acks the delivery whose tag is encoded in handle.
func (q *RabbitMQ) Delete(_ context.Context, handle string) error {
	tag, err := strconv.ParseUint(handle, 10, 64)
	if err != nil {
		return fmt.Errorf("parse delivery tag %q: %w", handle, err)
	}
	if err := q.channel.Ack(tag, false); err != nil {
		return fmt.Errorf("rabbitmq ack: %w", err)
	}
	return nil
}

// Close shuts down the connection and its channel.
func (q *RabbitMQ) Close() error {
	if q.conn == nil {
		return nil
	}
	return q.conn.Close()
}
